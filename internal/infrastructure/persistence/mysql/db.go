package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zeus1411/aquastore/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（生产环境应换成版本化迁移脚本）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&ProductModel{},
		&VariantModel{},
		&CartModel{},
		&PromotionModel{},
		&OrderModel{},
		&PaymentModel{},
		&NotificationModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain层实体不依赖GORM，Repository负责两者之间的转换
// 3. 凭据由外部身份服务管理，本表只存订单/通知所需的身份信息
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"index;size:20;not null;default:CUSTOMER;comment:角色"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (UserModel) TableName() string {
	return "users"
}

// ProductModel GORM商品模型
// 设计说明:
// 1. 价格int64存VND（越南盾无小数位）
// 2. Stock/SoldCount的变更必须走原子UPDATE表达式，不做读改写
// 3. 商品软删除：已下单商品被删后，订单取消时回补库存容忍缺失
type ProductModel struct {
	ID          uint           `gorm:"primaryKey"`
	Name        string         `gorm:"index;size:200;not null;comment:商品名"`
	SKU         string         `gorm:"uniqueIndex;size:50;not null;comment:SKU"`
	Price       int64          `gorm:"not null;comment:价格(VND)"`
	Stock       int            `gorm:"default:0;comment:库存"`
	SoldCount   int            `gorm:"default:0;comment:销量"`
	Discount    int            `gorm:"default:0;comment:行级折扣百分比"`
	Status      string         `gorm:"index;size:20;not null;default:ACTIVE;comment:状态"`
	Image       string         `gorm:"size:500;comment:主图URL"`
	Description string         `gorm:"type:text;comment:描述"`
	Variants    []VariantModel `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time      `gorm:"comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (ProductModel) TableName() string {
	return "products"
}

// VariantModel GORM商品规格模型
// 有规格的商品，库存扣减作用在规格行上。
type VariantModel struct {
	ID           uint   `gorm:"primaryKey"`
	ProductID    uint   `gorm:"index;not null;comment:商品ID"`
	SKU          string `gorm:"uniqueIndex;size:50;not null;comment:规格SKU"`
	OptionValues string `gorm:"size:200;comment:规格描述"`
	Price        int64  `gorm:"not null;comment:规格价格(VND)"`
	Stock        int    `gorm:"default:0;comment:规格库存"`
	SoldCount    int    `gorm:"default:0;comment:规格销量"`
	IsActive     bool   `gorm:"default:true;comment:是否启用"`
}

func (VariantModel) TableName() string {
	return "product_variants"
}

// CartModel GORM购物车模型
// Items整体存JSON：购物车行无需单独索引，读写总是整车操作。
type CartModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null;comment:用户ID"`
	Items     []byte    `gorm:"type:json;comment:购物车行JSON"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (CartModel) TableName() string {
	return "carts"
}

// PromotionModel GORM优惠券模型
// UsedBy存JSON（每用户使用计数），UsageCount的递增走原子条件UPDATE。
type PromotionModel struct {
	ID              uint      `gorm:"primaryKey"`
	Code            string    `gorm:"uniqueIndex;size:50;not null;comment:优惠码"`
	Name            string    `gorm:"size:100;comment:名称"`
	IsActive        bool      `gorm:"index;default:true;comment:是否启用"`
	StartDate       time.Time `gorm:"comment:生效时间"`
	EndDate         time.Time `gorm:"comment:失效时间"`
	DiscountType    string    `gorm:"size:20;not null;comment:优惠类型"`
	DiscountValue   int64     `gorm:"not null;comment:优惠值"`
	MinOrderValue   int64     `gorm:"default:0;comment:最低订单金额"`
	MaxDiscount     int64     `gorm:"default:0;comment:最大优惠金额(0不封顶)"`
	UsageLimitTotal int       `gorm:"default:0;comment:总使用上限(0不限)"`
	UsageLimitUser  int       `gorm:"default:0;comment:每用户上限(0不限)"`
	UsageCount      int       `gorm:"default:0;comment:已使用次数"`
	UsedBy          []byte    `gorm:"type:json;comment:用户使用记录JSON"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

func (PromotionModel) TableName() string {
	return "promotions"
}

// OrderModel GORM订单模型
// 设计说明:
// 1. OrderNo唯一索引（业务主键）
// 2. 明细/地址/优惠引用/状态历史都是下单时刻的快照，整体存JSON——
//    文档型存储的平移，明细不需要独立行级查询
// 3. (UserID, CreatedAt)复合索引服务"我的订单"列表
type OrderModel struct {
	ID           uint       `gorm:"primaryKey"`
	OrderNo      string     `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID       uint       `gorm:"index:idx_user_created;not null;comment:买家用户ID"`
	Items        []byte     `gorm:"type:json;not null;comment:明细快照JSON"`
	Subtotal     int64      `gorm:"not null;comment:小计(VND)"`
	ShippingFee  int64      `gorm:"not null;comment:运费(VND)"`
	Discount     int64      `gorm:"default:0;comment:优惠金额(VND)"`
	Tax          int64      `gorm:"default:0;comment:税费(VND)"`
	TotalPrice   int64      `gorm:"not null;comment:应付总额(VND)"`
	Status       string     `gorm:"index;size:20;not null;comment:订单状态"`
	Address      []byte     `gorm:"type:json;not null;comment:收货地址快照JSON"`
	Promotions   []byte     `gorm:"type:json;comment:应用的优惠券JSON"`
	PaymentID    uint       `gorm:"index;default:0;comment:支付单ID"`
	Notes        string     `gorm:"size:500;comment:买家备注"`
	IsPaid       bool       `gorm:"default:false;comment:是否已支付"`
	PaidAt       *time.Time `gorm:"comment:支付时间"`
	CancelReason string     `gorm:"size:500;comment:取消原因"`
	CancelledAt  *time.Time `gorm:"comment:取消时间"`
	CancelledBy  uint       `gorm:"default:0;comment:取消人"`
	History      []byte     `gorm:"type:json;not null;comment:状态流转历史JSON"`
	CreatedAt    time.Time  `gorm:"index:idx_user_created;comment:创建时间"`
	UpdatedAt    time.Time  `gorm:"comment:更新时间"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// PaymentModel GORM支付单模型
type PaymentModel struct {
	ID             uint       `gorm:"primaryKey"`
	TransactionRef string     `gorm:"uniqueIndex;size:40;not null;comment:交易引用"`
	OrderID        uint       `gorm:"index;not null;comment:订单ID"`
	UserID         uint       `gorm:"index;not null;comment:用户ID"`
	Method         string     `gorm:"size:20;not null;comment:支付方式"`
	Status         string     `gorm:"index;size:20;not null;comment:支付状态"`
	Amount         int64      `gorm:"not null;comment:金额(VND)"`
	Detail         []byte     `gorm:"type:json;comment:网关明细JSON"`
	ProcessedAt    *time.Time `gorm:"comment:处理完成时间"`
	CreatedAt      time.Time  `gorm:"comment:创建时间"`
	UpdatedAt      time.Time  `gorm:"comment:更新时间"`
}

func (PaymentModel) TableName() string {
	return "payments"
}

// NotificationModel GORM通知模型
type NotificationModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index:idx_notify_user;not null;comment:接收用户ID"`
	Type      string    `gorm:"size:30;not null;comment:通知类型"`
	OrderID   uint      `gorm:"index;default:0;comment:关联订单ID"`
	Title     string    `gorm:"size:100;comment:标题"`
	Message   string    `gorm:"size:500;comment:内容"`
	IsRead    bool      `gorm:"default:false;comment:是否已读"`
	CreatedAt time.Time `gorm:"index:idx_notify_user;comment:创建时间"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}
