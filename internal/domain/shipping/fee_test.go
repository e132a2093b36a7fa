package shipping

import "testing"

// TestFee_Tiers 各分段费率的精确值
func TestFee_Tiers(t *testing.T) {
	cases := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{"14%档", 50_000, 7_000},
		{"14%档上界", 99_999, 14_000}, // 99999*0.14=13999.86 -> 14000
		{"8%档下界", 100_000, 8_000},
		{"8%档", 150_000, 12_000},
		{"8%档", 250_000, 20_000},
		{"5%档", 500_000, 25_000},
		{"3%档", 600_000, 18_000},
		{"1.8%档下界", 1_000_000, 18_000},
		{"1.8%档", 2_000_000, 36_000},
		{"零小计", 0, 0},
	}

	for _, tc := range cases {
		if got := Fee(tc.subtotal); got != tc.want {
			t.Errorf("%s: Fee(%d)=%d, 期望%d", tc.name, tc.subtotal, got, tc.want)
		}
	}
}

// TestFee_TierBoundary 跨档时费率下降但绝对值不回升到更高档水平之上
// 例如 Fee(100000)=8000 < Fee(99999)=14000（档位切换点费率骤降）
func TestFee_TierBoundary(t *testing.T) {
	if Fee(100_000) >= Fee(99_999) {
		t.Errorf("跨档后运费应下降: Fee(100000)=%d, Fee(99999)=%d", Fee(100_000), Fee(99_999))
	}
	if Fee(1_000_000) >= Fee(999_999) {
		t.Errorf("跨档后运费应下降: Fee(1000000)=%d, Fee(999999)=%d", Fee(1_000_000), Fee(999_999))
	}
}
