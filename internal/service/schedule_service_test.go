package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SHILUNKA/edusaas-sub001/internal/dto"
	"github.com/SHILUNKA/edusaas-sub001/internal/model"
	pkgerrors "github.com/SHILUNKA/edusaas-sub001/pkg/errors"
)

const (
	testCourseID  = "11111111-1111-1111-1111-111111111111"
	testRoomID    = "22222222-2222-2222-2222-222222222222"
	testTeacherA  = "33333333-3333-3333-3333-333333333333"
	testTeacherB  = "44444444-4444-4444-4444-444444444444"
	testOperator  = "55555555-5555-5555-5555-555555555555"
	testBaseID    = "66666666-6666-6666-6666-666666666666"
	testUpstream  = "upstream-token"
	testIdemKeyA  = "77777777-7777-7777-7777-777777777777"
)

type scheduleFixture struct {
	svc     ScheduleService
	classGW *mockClassGateway
	roomGW  *mockRoomGateway
	subRepo *mockSubmissionRepo
}

func newScheduleFixture() *scheduleFixture {
	classGW := newMockClassGateway()
	roomGW := newMockRoomGateway()
	subRepo := newMockSubmissionRepo()
	svc := NewScheduleService(classGW, roomGW, subRepo, time.UTC, zap.NewNop())
	return &scheduleFixture{svc: svc, classGW: classGW, roomGW: roomGW, subRepo: subRepo}
}

func validDraft(t *testing.T) *dto.ScheduleDraftRequest {
	t.Helper()
	first := mustTime(t, "2026-03-02T10:00:00Z")
	return &dto.ScheduleDraftRequest{
		CourseID:    testCourseID,
		CourseName:  "少儿编程 L1",
		RoomID:      testRoomID,
		RoomName:    "301 教室",
		TeacherIDs:  []string{testTeacherB, testTeacherA, testTeacherB},
		MaxCapacity: 12,
		FirstStart:  first,
		FirstEnd:    first.Add(90 * time.Minute),
		Recurrence:  "weekly",
		RepeatCount: 4,
	}
}

func TestPreview_WeeklyByCount(t *testing.T) {
	f := newScheduleFixture()

	resp, err := f.svc.Preview(context.Background(), validDraft(t))
	if err != nil {
		t.Fatalf("期望预览成功, 实际返回错误: %v", err)
	}
	if resp.OccurrenceCount != 4 {
		t.Errorf("期望 4 个课次, 实际 %d 个", resp.OccurrenceCount)
	}
	if resp.Occurrences[1] != "2026-03-09T10:00:00Z" {
		t.Errorf("期望第二课次 2026-03-09T10:00:00Z, 实际 %s", resp.Occurrences[1])
	}
	if f.classGW.createCalls != 0 {
		t.Error("期望预览不触发任何上游写入")
	}
}

func TestPreview_ValidationFailures(t *testing.T) {
	f := newScheduleFixture()

	cases := []struct {
		name     string
		mutate   func(req *dto.ScheduleDraftRequest)
		wantCode string
	}{
		{"缺课程", func(r *dto.ScheduleDraftRequest) { r.CourseID = "" }, pkgerrors.CodeMissingCourse},
		{"缺教室", func(r *dto.ScheduleDraftRequest) { r.RoomID = "" }, pkgerrors.CodeMissingRoom},
		{"缺老师", func(r *dto.ScheduleDraftRequest) { r.TeacherIDs = nil }, pkgerrors.CodeNoTeacher},
		{"结束早于开始", func(r *dto.ScheduleDraftRequest) { r.FirstEnd = r.FirstStart.Add(-time.Minute) }, pkgerrors.CodeBadTimeWindow},
		{"两种结束方式都给", func(r *dto.ScheduleDraftRequest) { r.UntilDate = "2026-06-01" }, pkgerrors.CodeBadTermination},
		{"一种结束方式都不给", func(r *dto.ScheduleDraftRequest) { r.RepeatCount = 0 }, pkgerrors.CodeBadTermination},
		{"截止日早于首节课", func(r *dto.ScheduleDraftRequest) {
			r.RepeatCount = 0
			r.UntilDate = "2026-02-01"
		}, pkgerrors.CodeRangeTooLarge},
		{"次数超上限", func(r *dto.ScheduleDraftRequest) { r.RepeatCount = MaxOccurrences + 1 }, pkgerrors.CodeRangeTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validDraft(t)
			tc.mutate(req)

			_, err := f.svc.Preview(context.Background(), req)
			var vErr *pkgerrors.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("期望 ValidationError, 实际 %v", err)
			}
			if vErr.Code != tc.wantCode {
				t.Errorf("期望错误码 %s, 实际 %s", tc.wantCode, vErr.Code)
			}
			if f.classGW.createCalls != 0 {
				t.Error("期望校验失败时不发上游请求")
			}
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	f := newScheduleFixture()

	resp, err := f.svc.Submit(context.Background(), testUpstream, testOperator, testBaseID, validDraft(t), testIdemKeyA)
	if err != nil {
		t.Fatalf("期望提交成功, 实际返回错误: %v", err)
	}
	if resp.CreatedCount != 4 {
		t.Errorf("期望创建 4 节课, 实际 %d 节", resp.CreatedCount)
	}
	if f.classGW.createCalls != 1 {
		t.Fatalf("期望恰好 1 次上游调用, 实际 %d 次", f.classGW.createCalls)
	}

	// 上游请求体：老师已去重排序，repeat_count 等于展开课次数
	req := f.classGW.lastCreateReq
	if len(req.TeacherIDs) != 2 {
		t.Errorf("期望老师去重后 2 位, 实际 %d 位", len(req.TeacherIDs))
	}
	if req.TeacherIDs[0] != testTeacherA {
		t.Errorf("期望老师列表已排序, 实际首位 %s", req.TeacherIDs[0])
	}
	if req.RepeatCount != 4 {
		t.Errorf("期望 repeat_count=4, 实际 %d", req.RepeatCount)
	}
	if f.classGW.lastIdemKey != testIdemKeyA {
		t.Errorf("期望幂等键透传上游, 实际 %s", f.classGW.lastIdemKey)
	}

	// 流水落成功态
	sub, err := f.subRepo.GetByID(context.Background(), resp.SubmissionID)
	if err != nil {
		t.Fatalf("期望流水已落库: %v", err)
	}
	if sub.Status != model.SubmissionStatusSucceeded {
		t.Errorf("期望流水状态 succeeded, 实际 %s", sub.Status)
	}
	if sub.CreatedCount != 4 {
		t.Errorf("期望流水 created_count=4, 实际 %d", sub.CreatedCount)
	}
}

func TestSubmit_CapacityDefaultsFromRoom(t *testing.T) {
	f := newScheduleFixture()
	f.roomGW.rooms[testRoomID] = &model.Room{ID: testRoomID, Name: "301 教室", Capacity: 20}

	req := validDraft(t)
	req.MaxCapacity = 0

	if _, err := f.svc.Submit(context.Background(), testUpstream, testOperator, testBaseID, req, testIdemKeyA); err != nil {
		t.Fatalf("期望提交成功, 实际返回错误: %v", err)
	}
	if f.classGW.lastCreateReq.MaxCapacity != 20 {
		t.Errorf("期望容量回退到教室座位数 20, 实际 %d", f.classGW.lastCreateReq.MaxCapacity)
	}
}

func TestSubmit_IdempotentReplay(t *testing.T) {
	f := newScheduleFixture()
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, testUpstream, testOperator, testBaseID, validDraft(t), testIdemKeyA)
	if err != nil {
		t.Fatalf("首次提交失败: %v", err)
	}

	second, err := f.svc.Submit(ctx, testUpstream, testOperator, testBaseID, validDraft(t), testIdemKeyA)
	if err != nil {
		t.Fatalf("重放提交失败: %v", err)
	}
	if f.classGW.createCalls != 1 {
		t.Errorf("期望重放不再调上游, 实际共 %d 次调用", f.classGW.createCalls)
	}
	if second.SubmissionID != first.SubmissionID {
		t.Errorf("期望重放返回同一流水 %s, 实际 %s", first.SubmissionID, second.SubmissionID)
	}
	if second.CreatedCount != first.CreatedCount {
		t.Errorf("期望重放返回同一创建数, 实际 %d", second.CreatedCount)
	}
}

func TestSubmit_UpstreamFailureAllOrNothing(t *testing.T) {
	f := newScheduleFixture()
	ctx := context.Background()
	f.classGW.createErr = &pkgerrors.RemoteError{StatusCode: 409, Message: "教室该时段已被占用"}

	_, err := f.svc.Submit(ctx, testUpstream, testOperator, testBaseID, validDraft(t), testIdemKeyA)
	var re *pkgerrors.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("期望 RemoteError, 实际 %v", err)
	}
	if re.Message != "教室该时段已被占用" {
		t.Errorf("期望透出上游原话, 实际 %q", re.Message)
	}

	// 流水落败态并记录原因
	sub, err := f.subRepo.GetByIdempotencyKey(ctx, testIdemKeyA)
	if err != nil {
		t.Fatalf("期望失败流水已落库: %v", err)
	}
	if sub.Status != model.SubmissionStatusFailed {
		t.Errorf("期望流水状态 failed, 实际 %s", sub.Status)
	}
	if sub.FailureReason == "" {
		t.Error("期望流水记录失败原因")
	}

	// 用户主动重试：复用同一流水行，这次成功
	f.classGW.createErr = nil
	resp, err := f.svc.Submit(ctx, testUpstream, testOperator, testBaseID, validDraft(t), testIdemKeyA)
	if err != nil {
		t.Fatalf("期望重试成功, 实际返回错误: %v", err)
	}
	if resp.SubmissionID != sub.SubmissionID {
		t.Errorf("期望重试复用流水 %s, 实际 %s", sub.SubmissionID, resp.SubmissionID)
	}
	retried, _ := f.subRepo.GetByID(ctx, sub.SubmissionID)
	if retried.Status != model.SubmissionStatusSucceeded {
		t.Errorf("期望重试后流水状态 succeeded, 实际 %s", retried.Status)
	}
	if retried.FailureReason != "" {
		t.Errorf("期望重试成功后清除失败原因, 实际 %q", retried.FailureReason)
	}
}

func TestSubmit_RetryRefreshesSnapshot(t *testing.T) {
	f := newScheduleFixture()
	ctx := context.Background()

	// 第一次提交因上游故障落败态
	f.classGW.createErr = &pkgerrors.RemoteError{StatusCode: 500, Message: "上游内部错误"}
	if _, err := f.svc.Submit(ctx, testUpstream, testOperator, testBaseID, validDraft(t), testIdemKeyA); err == nil {
		t.Fatal("期望首次提交失败")
	}

	// 重试时用户把首次开课时间顺延了一天
	f.classGW.createErr = nil
	changed := validDraft(t)
	changed.FirstStart = changed.FirstStart.Add(24 * time.Hour)
	changed.FirstEnd = changed.FirstEnd.Add(24 * time.Hour)
	changed.RepeatCount = 3

	resp, err := f.svc.Submit(ctx, testUpstream, testOperator, testBaseID, changed, testIdemKeyA)
	if err != nil {
		t.Fatalf("期望重试成功, 实际返回错误: %v", err)
	}

	// 流水快照必须与重试请求（也即上游实际创建的排课）一致
	sub, err := f.subRepo.GetByID(ctx, resp.SubmissionID)
	if err != nil {
		t.Fatalf("期望流水存在: %v", err)
	}
	if !sub.FirstStart.Equal(changed.FirstStart) {
		t.Errorf("期望流水首课时间 %s, 实际 %s", changed.FirstStart, sub.FirstStart)
	}
	if !sub.FirstStart.Equal(f.classGW.lastCreateReq.StartTime) {
		t.Errorf("期望流水快照与上游请求一致, 流水 %s, 上游 %s",
			sub.FirstStart, f.classGW.lastCreateReq.StartTime)
	}
	if !sub.FirstEnd.Equal(changed.FirstEnd) {
		t.Errorf("期望流水首课结束时间 %s, 实际 %s", changed.FirstEnd, sub.FirstEnd)
	}
	if sub.RepeatCount != 3 {
		t.Errorf("期望流水重复次数刷新为 3, 实际 %d", sub.RepeatCount)
	}
}

func TestSubmit_SingleSession(t *testing.T) {
	f := newScheduleFixture()

	req := validDraft(t)
	req.Recurrence = "none"
	req.RepeatCount = 0

	resp, err := f.svc.Submit(context.Background(), testUpstream, testOperator, testBaseID, req, testIdemKeyA)
	if err != nil {
		t.Fatalf("期望提交成功, 实际返回错误: %v", err)
	}
	if resp.CreatedCount != 1 {
		t.Errorf("期望单次排课创建 1 节, 实际 %d 节", resp.CreatedCount)
	}
}

func TestListToday_PhaseDerived(t *testing.T) {
	f := newScheduleFixture()
	now := time.Now()
	f.classGW.today = []model.ScheduledClass{
		{ID: "c1", CourseName: "上午课", StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour)},
		{ID: "c2", CourseName: "当前课", StartTime: now.Add(-30 * time.Minute), EndTime: now.Add(30 * time.Minute)},
		{ID: "c3", CourseName: "晚间课", StartTime: now.Add(2 * time.Hour), EndTime: now.Add(3 * time.Hour)},
	}

	classes, err := f.svc.ListToday(context.Background(), testUpstream)
	if err != nil {
		t.Fatalf("期望查询成功, 实际返回错误: %v", err)
	}
	if len(classes) != 3 {
		t.Fatalf("期望 3 节课, 实际 %d 节", len(classes))
	}
	wantPhases := []string{"ended", "in_progress", "upcoming"}
	for i, want := range wantPhases {
		if classes[i].Phase != want {
			t.Errorf("第 %d 节期望阶段 %s, 实际 %s", i, want, classes[i].Phase)
		}
	}
}
