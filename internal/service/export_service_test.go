package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/SHILUNKA/edusaas-sub001/internal/model"
)

func TestExportRoster_Xlsx(t *testing.T) {
	classGW := newMockClassGateway()
	enrollmentGW := newMockEnrollmentGateway()
	start := mustTime(t, "2026-03-02T02:00:00Z") // 北京时间 10:00
	classGW.classes["c1"] = &model.ScheduledClass{
		ID:         "c1",
		CourseName: "少儿编程 L1",
		RoomName:   "301 教室",
		StartTime:  start,
		EndTime:    start.Add(90 * time.Minute),
	}
	enrollmentGW.rosters["c1"] = []model.Enrollment{
		{ID: "e1", ParticipantName: "小明", Status: model.EnrollmentStatusCompleted, TeacherFeedback: "表现积极"},
		{ID: "e2", ParticipantName: "小红", Status: model.EnrollmentStatusEnrolled},
	}

	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Skipf("时区数据不可用: %v", err)
	}
	svc := NewExportService(classGW, enrollmentGW, loc, zap.NewNop())

	buf, filename, err := svc.ExportRoster(context.Background(), testUpstream, "c1")
	if err != nil {
		t.Fatalf("期望导出成功, 实际返回错误: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("期望 .xlsx 文件名, 实际 %s", filename)
	}
	if !strings.Contains(filename, "20260302") {
		t.Errorf("期望文件名带本地日期, 实际 %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("期望生成合法 xlsx: %v", err)
	}
	defer f.Close()

	title, _ := f.GetCellValue("签到表", "A1")
	if !strings.Contains(title, "少儿编程 L1") || !strings.Contains(title, "10:00") {
		t.Errorf("期望标题含课程名与本地时间, 实际 %q", title)
	}

	status1, _ := f.GetCellValue("签到表", "C3")
	if status1 != "已到" {
		t.Errorf("期望首行状态 已到, 实际 %q", status1)
	}
	status2, _ := f.GetCellValue("签到表", "C4")
	if status2 != "未到" {
		t.Errorf("期望次行状态 未到, 实际 %q", status2)
	}
	name2, _ := f.GetCellValue("签到表", "B4")
	if name2 != "小红" {
		t.Errorf("期望次行姓名 小红, 实际 %q", name2)
	}
}

func TestExportRoster_EmptyRoster(t *testing.T) {
	classGW := newMockClassGateway()
	classGW.classes["c1"] = &model.ScheduledClass{ID: "c1", CourseName: "空课"}
	svc := NewExportService(classGW, newMockEnrollmentGateway(), time.UTC, zap.NewNop())

	if _, _, err := svc.ExportRoster(context.Background(), testUpstream, "c1"); !errors.Is(err, ErrExportEmptyRoster) {
		t.Errorf("期望 ErrExportEmptyRoster, 实际 %v", err)
	}
}
