// Package cooldown 判断同一宠物同一互动的冷却是否结束。
package cooldown

import "time"

// Decision 冷却判断结果
type Decision struct {
	Allowed          bool
	RemainingMinutes int
}

// Check 根据上次发生时间判断是否允许
// last 为 nil 或已过 cooldownMinutes 分钟时允许；否则剩余分钟 = 冷却 - 已过整分钟数
func Check(last *time.Time, cooldownMinutes int, now time.Time) Decision {
	if last == nil || cooldownMinutes <= 0 {
		return Decision{Allowed: true}
	}

	elapsed := max(now.Sub(*last), 0)
	if elapsed >= time.Duration(cooldownMinutes)*time.Minute {
		return Decision{Allowed: true}
	}

	remaining := cooldownMinutes - int(elapsed/time.Minute)
	return Decision{RemainingMinutes: max(remaining, 0)}
}

// CheckDuration 以 time.Duration 表示冷却，向下取整到分钟
func CheckDuration(last *time.Time, cooldown time.Duration, now time.Time) Decision {
	return Check(last, int(cooldown/time.Minute), now)
}
