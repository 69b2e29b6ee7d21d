// Package rng 是对局内唯一的随机源：状态显式存放在 Game 里，每次抽取返回新状态。
//
// 算法为 splitmix64，只用整数运算，跨平台结果一致。
package rng

// Seed 是 PRNG 状态，可以直接序列化进快照。
type Seed struct {
	State uint64 `json:"state"`
}

const golden = 0x9e3779b97f4a7c15

// Initial 从 StartGame 携带的整数种子构造初始状态。
func Initial(seed int64) Seed {
	// 先混一次，避免 0、1、2 这类小种子的前几次输出过于相近
	v, _ := Seed{State: uint64(seed)}.Uint64()
	return Seed{State: v}
}

// Uint64 抽取一个 64 位值，返回新状态。
func (s Seed) Uint64() (uint64, Seed) {
	next := s.State + golden
	z := next
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31), Seed{State: next}
}

// Intn 抽取 [0, n) 内的整数；n <= 0 时返回 0 且不消耗状态。
func (s Seed) Intn(n int) (int, Seed) {
	if n <= 0 {
		return 0, s
	}
	bound := uint64(n)
	// 拒绝采样消除取模偏差
	limit := ^uint64(0) - (^uint64(0) % bound)
	for {
		v, next := s.Uint64()
		s = next
		if v < limit {
			return int(v % bound), s
		}
	}
}

// Bool 抽取一次硬币。
func (s Seed) Bool() (bool, Seed) {
	v, next := s.Uint64()
	return v&1 == 1, next
}
