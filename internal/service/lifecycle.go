package service

import "time"

// ── 课堂生命周期 ──
//
// 阶段完全由当前时刻与课堂起止时间推导，不落库、不缓存，
// 同一节课在不同时刻查询可能得到不同阶段，这是预期行为。

// Phase 课堂所处阶段
type Phase string

const (
	PhaseUpcoming   Phase = "upcoming"
	PhaseInProgress Phase = "in_progress"
	PhaseEnded      Phase = "ended"
)

// ClassifyPhase 根据当前时刻对课堂分段
//
// 边界规则：start <= now <= end 算进行中，两端均含
func ClassifyPhase(now, start, end time.Time) Phase {
	if now.Before(start) {
		return PhaseUpcoming
	}
	if now.After(end) {
		return PhaseEnded
	}
	return PhaseInProgress
}

// RosterLocked 花名册是否锁定：课已结束即只读，点名一律拒绝
func RosterLocked(phase Phase) bool {
	return phase == PhaseEnded
}
