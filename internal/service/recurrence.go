package service

import (
	"time"

	pkgerrors "github.com/SHILUNKA/edusaas-sub001/pkg/errors"
)

// ── 课次生成器 ──
//
// 纯函数：给定首节课开始瞬时、重复节奏与结束方式，生成全部课次的开始瞬时。
// 所有计算基于 UTC 瞬时做固定步长加法，不碰本地墙钟，避免夏令时漂移；
// 截止日转瞬时（当日 23:59:59 本地时间）由调用方完成。

// Cadence 重复节奏
type Cadence string

const (
	CadenceNone     Cadence = "none"
	CadenceWeekly   Cadence = "weekly"
	CadenceBiweekly Cadence = "biweekly"
)

// MaxOccurrences 单次批量排课的课次上限
// 业务约定的防误操作护栏，不是上游协议限制；超出整批拒绝，绝不截断
const MaxOccurrences = 50

// Step 返回节奏对应的步长
func (c Cadence) Step() time.Duration {
	switch c {
	case CadenceWeekly:
		return 7 * 24 * time.Hour
	case CadenceBiweekly:
		return 14 * 24 * time.Hour
	}
	return 0
}

// Valid 校验节奏取值
func (c Cadence) Valid() bool {
	return c == CadenceNone || c == CadenceWeekly || c == CadenceBiweekly
}

// Termination 结束方式：Count > 0 为按次数，否则 Until 为截止瞬时（含）
// 提交校验保证两者只激活一个
type Termination struct {
	Count int
	Until time.Time
}

// GenerateOccurrences 生成课次开始瞬时序列（升序、等步长）
//
// 约定：
//   - none 节奏恒返回 [firstStart]
//   - 次数模式：恰好 Count 个
//   - 截止模式：首个超过 Until 的课次不再纳入；Until 早于 firstStart 时返回空序列，
//     调用方必须把空序列当作校验错误处理，不能静默跳过
//   - 超过 MaxOccurrences 返回 range_too_large，整批拒绝
func GenerateOccurrences(firstStart time.Time, cadence Cadence, term Termination) ([]time.Time, error) {
	if cadence == CadenceNone {
		return []time.Time{firstStart}, nil
	}

	step := cadence.Step()

	if term.Count > 0 {
		if term.Count > MaxOccurrences {
			return nil, pkgerrors.NewValidation(pkgerrors.CodeRangeTooLarge)
		}
		occurrences := make([]time.Time, 0, term.Count)
		for i := 0; i < term.Count; i++ {
			occurrences = append(occurrences, firstStart.Add(time.Duration(i)*step))
		}
		return occurrences, nil
	}

	// 截止模式
	occurrences := make([]time.Time, 0, 8)
	for t := firstStart; !t.After(term.Until); t = t.Add(step) {
		if len(occurrences) >= MaxOccurrences {
			return nil, pkgerrors.NewValidation(pkgerrors.CodeRangeTooLarge)
		}
		occurrences = append(occurrences, t)
	}
	return occurrences, nil
}

// EndOfDay 把本地日期换算为当日最后一秒的瞬时（截止模式的比较基准）
func EndOfDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 23, 59, 59, 0, loc)
}
