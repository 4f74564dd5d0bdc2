package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/SHILUNKA/edusaas-sub001/internal/gateway"
	"github.com/SHILUNKA/edusaas-sub001/internal/model"
	pkgerrors "github.com/SHILUNKA/edusaas-sub001/pkg/errors"
)

// ── Mock ClassGateway ──

type mockClassGateway struct {
	classes       map[string]*model.ScheduledClass
	today         []model.ScheduledClass
	createErr     error
	createCalls   int
	lastCreateReq *gateway.CreateClassesRequest
	lastIdemKey   string
}

func newMockClassGateway() *mockClassGateway {
	return &mockClassGateway{classes: make(map[string]*model.ScheduledClass)}
}

func (m *mockClassGateway) CreateClasses(_ context.Context, _ string, req *gateway.CreateClassesRequest, idempotencyKey string) ([]model.ScheduledClass, error) {
	m.createCalls++
	m.lastCreateReq = req
	m.lastIdemKey = idempotencyKey
	if m.createErr != nil {
		return nil, m.createErr
	}
	created := make([]model.ScheduledClass, 0, req.RepeatCount)
	for i := 0; i < req.RepeatCount; i++ {
		created = append(created, model.ScheduledClass{
			ID:        fmt.Sprintf("class-%d", i+1),
			CourseID:  req.CourseID,
			RoomID:    req.RoomID,
			StartTime: req.StartTime.Add(time.Duration(i) * 7 * 24 * time.Hour),
			EndTime:   req.EndTime.Add(time.Duration(i) * 7 * 24 * time.Hour),
		})
	}
	return created, nil
}

func (m *mockClassGateway) ListToday(_ context.Context, _ string) ([]model.ScheduledClass, error) {
	return m.today, nil
}

func (m *mockClassGateway) GetClass(_ context.Context, _ string, classID string) (*model.ScheduledClass, error) {
	if c, ok := m.classes[classID]; ok {
		return c, nil
	}
	return nil, &pkgerrors.RemoteError{StatusCode: http.StatusNotFound, Message: "课程不存在"}
}

// ── Mock EnrollmentGateway ──

type mockEnrollmentGateway struct {
	rosters       map[string][]model.Enrollment // key: classID
	completeErr   error
	completeCalls int
}

func newMockEnrollmentGateway() *mockEnrollmentGateway {
	return &mockEnrollmentGateway{rosters: make(map[string][]model.Enrollment)}
}

func (m *mockEnrollmentGateway) ListByClass(_ context.Context, _ string, classID string) ([]model.Enrollment, error) {
	return m.rosters[classID], nil
}

func (m *mockEnrollmentGateway) Complete(_ context.Context, _ string, enrollmentID string, req *gateway.CompleteEnrollmentRequest) (*model.Enrollment, error) {
	m.completeCalls++
	if m.completeErr != nil {
		return nil, m.completeErr
	}
	for classID, roster := range m.rosters {
		for i, e := range roster {
			if e.ID != enrollmentID {
				continue
			}
			// 上游对已 completed 的记录返回 409
			if e.Status == model.EnrollmentStatusCompleted {
				return nil, &pkgerrors.RemoteError{StatusCode: http.StatusConflict, Message: "该报名已核销"}
			}
			m.rosters[classID][i].Status = model.EnrollmentStatusCompleted
			m.rosters[classID][i].TeacherFeedback = req.TeacherFeedback
			updated := m.rosters[classID][i]
			return &updated, nil
		}
	}
	return nil, &pkgerrors.RemoteError{StatusCode: http.StatusNotFound, Message: "报名记录不存在"}
}

// ── Mock AuthGateway ──

type mockAuthGateway struct {
	users map[string]gateway.LoginResult // key: username + ":" + password
}

func newMockAuthGateway() *mockAuthGateway {
	return &mockAuthGateway{users: make(map[string]gateway.LoginResult)}
}

func (m *mockAuthGateway) Login(_ context.Context, req *gateway.LoginRequest) (*gateway.LoginResult, error) {
	if r, ok := m.users[req.Username+":"+req.Password]; ok {
		return &r, nil
	}
	return nil, &pkgerrors.RemoteError{StatusCode: http.StatusUnauthorized, Message: "用户名或密码错误"}
}

// ── Mock RoomGateway ──

type mockRoomGateway struct {
	rooms map[string]*model.Room
}

func newMockRoomGateway() *mockRoomGateway {
	return &mockRoomGateway{rooms: make(map[string]*model.Room)}
}

func (m *mockRoomGateway) GetRoom(_ context.Context, _ string, roomID string) (*model.Room, error) {
	if r, ok := m.rooms[roomID]; ok {
		return r, nil
	}
	return nil, &pkgerrors.RemoteError{StatusCode: http.StatusNotFound, Message: "教室不存在"}
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	subs   map[string]*model.ScheduleSubmission // key: submission_id
	nextID int
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{subs: make(map[string]*model.ScheduleSubmission)}
}

func (m *mockSubmissionRepo) Create(_ context.Context, sub *model.ScheduleSubmission) error {
	if sub.SubmissionID == "" {
		m.nextID++
		sub.SubmissionID = fmt.Sprintf("sub-%d", m.nextID)
	}
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	copied := *sub
	m.subs[sub.SubmissionID] = &copied
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.ScheduleSubmission, error) {
	if s, ok := m.subs[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) GetByIdempotencyKey(_ context.Context, key string) (*model.ScheduleSubmission, error) {
	for _, s := range m.subs {
		if s.IdempotencyKey == key {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) ListByOperator(_ context.Context, operatorID string, limit int) ([]model.ScheduleSubmission, error) {
	var result []model.ScheduleSubmission
	for _, s := range m.subs {
		if s.OperatorID == operatorID {
			result = append(result, *s)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockSubmissionRepo) Update(_ context.Context, sub *model.ScheduleSubmission) error {
	sub.UpdatedAt = time.Now()
	copied := *sub
	m.subs[sub.SubmissionID] = &copied
	return nil
}

func (m *mockSubmissionRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, s := range m.subs {
		if s.CreatedAt.Before(cutoff) {
			delete(m.subs, id)
			n++
		}
	}
	return n, nil
}

// ── Mock SessionStore ──

type mockSessionStore struct {
	tokens      map[string]string // key: userID
	blacklisted map[string]bool   // key: jti
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{
		tokens:      make(map[string]string),
		blacklisted: make(map[string]bool),
	}
}

func (m *mockSessionStore) SetUpstreamToken(_ context.Context, userID, token string, _ time.Duration) error {
	m.tokens[userID] = token
	return nil
}

func (m *mockSessionStore) GetUpstreamToken(_ context.Context, userID string) (string, error) {
	return m.tokens[userID], nil
}

func (m *mockSessionStore) DeleteUpstreamToken(_ context.Context, userID string) error {
	delete(m.tokens, userID)
	return nil
}

func (m *mockSessionStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl > 0 {
		m.blacklisted[jti] = true
	}
	return nil
}

// ── Mock CheckinLocker ──

type mockLocker struct {
	held     map[string]bool
	acquires int
	releases int
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]bool)}
}

func (m *mockLocker) AcquireCheckinLock(_ context.Context, enrollmentID string, _ time.Duration) (bool, error) {
	m.acquires++
	if m.held[enrollmentID] {
		return false, nil
	}
	m.held[enrollmentID] = true
	return true, nil
}

func (m *mockLocker) ReleaseCheckinLock(_ context.Context, enrollmentID string) error {
	m.releases++
	delete(m.held, enrollmentID)
	return nil
}
