package model

import (
	"math"
	"testing"
)

func TestPageOffset(t *testing.T) {
	tests := []struct {
		name string
		page int
		want int
	}{
		{"先頭ページ", 1, 0},
		{"2ページ目", 2, 10},
		{"ゼロは0に丸める", 0, 0},
		{"負数は0に丸める", -5, 0},
		{"上限なし", 1000, 9990},
		{"溢れる直前", 922337203685477581, 9223372036854775800},
		{"乗算が負に溢れる", 922337203685477582, maxPageOffset},
		{"乗算が小さな正数に溢れる", 1844674407370955163, maxPageOffset},
		{"int最大値", math.MaxInt64, maxPageOffset},
		{"int最小値", math.MinInt64, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageOffset(tt.page); got != tt.want {
				t.Errorf("PageOffset(%d) = %d, want %d", tt.page, got, tt.want)
			}
		})
	}
}
