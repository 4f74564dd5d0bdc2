package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/SHILUNKA/edusaas-sub001/internal/gateway"
	"github.com/SHILUNKA/edusaas-sub001/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmptyRoster  = errors.New("该课程暂无报名学员")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出某节课的纸质签到表 (.xlsx)，供基地现场补录
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportRoster 导出某节课的花名册签到表
	ExportRoster(ctx context.Context, token, classID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	classGW      gateway.ClassGateway
	enrollmentGW gateway.EnrollmentGateway
	location     *time.Location
	logger       *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(classGW gateway.ClassGateway, enrollmentGW gateway.EnrollmentGateway, location *time.Location, logger *zap.Logger) ExportService {
	return &exportService{
		classGW:      classGW,
		enrollmentGW: enrollmentGW,
		location:     location,
		logger:       logger,
	}
}

// ═══════════════════════════════════════════════════════════
// ExportRoster — 导出花名册签到表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 首行标题：课程名 + 本地日期时间 + 教室
//   - 表头：序号 | 学员姓名 | 到课状态 | 老师评价 | 现场签名
//   - 已点名学员状态列填"已到"，未点名留"未到"，签名列留空
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportRoster(ctx context.Context, token, classID string) (*bytes.Buffer, string, error) {
	class, err := s.classGW.GetClass(ctx, token, classID)
	if err != nil {
		return nil, "", err
	}
	enrollments, err := s.enrollmentGW.ListByClass(ctx, token, classID)
	if err != nil {
		return nil, "", err
	}
	if len(enrollments) == 0 {
		return nil, "", ErrExportEmptyRoster
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "签到表"
	f.SetSheetName("Sheet1", sheet)

	localStart := class.StartTime.In(s.location)
	title := fmt.Sprintf("%s  %s  %s", class.CourseName, localStart.Format("2006-01-02 15:04"), class.RoomName)
	_ = f.SetCellValue(sheet, "A1", title)
	_ = f.MergeCell(sheet, "A1", "E1")

	headers := []string{"序号", "学员姓名", "到课状态", "老师评价", "现场签名"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, e := range enrollments {
		status := "未到"
		if e.Status == model.EnrollmentStatusCompleted {
			status = "已到"
		}
		values := []interface{}{row + 1, e.ParticipantName, status, e.TeacherFeedback, ""}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	// 列宽：姓名/评价列放宽，便于手写签名
	_ = f.SetColWidth(sheet, "A", "A", 6)
	_ = f.SetColWidth(sheet, "B", "B", 16)
	_ = f.SetColWidth(sheet, "C", "C", 10)
	_ = f.SetColWidth(sheet, "D", "E", 24)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.logger.Error("写出 Excel 失败", zap.String("class_id", classID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("签到表_%s_%s.xlsx", class.CourseName, localStart.Format("20060102"))
	return &buf, filename, nil
}
