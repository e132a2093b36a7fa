package mysql

import (
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate SELECT ... FOR UPDATE行锁
func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// isDuplicateError 判断是否为MySQL唯一索引冲突错误（错误码1062）
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

// mustJSON 序列化为JSON（模型转换用；实体字段都是可序列化的纯数据，
// 失败意味着编程错误而非运行时条件）
func mustJSON(v interface{}) []byte {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// fromJSON 反序列化JSON列，空列为空值
func fromJSON(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
