package rng

import "testing"

func TestSeed_相同输入相同输出(t *testing.T) {
	a := Initial(42)
	b := Initial(42)
	for i := 0; i < 100; i++ {
		var va, vb int
		va, a = a.Intn(1000)
		vb, b = b.Intn(1000)
		if va != vb {
			t.Fatalf("第 %d 次抽取不一致: %d != %d", i, va, vb)
		}
	}
	if a != b {
		t.Fatalf("期望最终状态一致")
	}
}

func TestSeed_抽取不修改原值(t *testing.T) {
	s := Initial(7)
	v1, _ := s.Uint64()
	v2, _ := s.Uint64()
	if v1 != v2 {
		t.Fatalf("期望对同一状态重复抽取结果相同（值语义）")
	}
}

func TestIntn_范围与边界(t *testing.T) {
	s := Initial(1)
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		var v int
		v, s = s.Intn(3)
		if v < 0 || v >= 3 {
			t.Fatalf("越界: %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Fatalf("期望三个取值都出现, got=%v", seen)
	}
	same := Initial(9)
	if v, next := same.Intn(0); v != 0 || next != same {
		t.Fatalf("期望 n<=0 时不消耗状态")
	}
}
