package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	repomocks "gitee.com/flycash/notification-dispatch/internal/repository/mocks"
	"github.com/meoying/dlock-go"
	"github.com/sony/sonyflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newIDGenerator() *sonyflake.Sonyflake {
	return sonyflake.NewSonyflake(sonyflake.Settings{
		MachineID: func() (uint16, error) { return 1, nil },
	})
}

func TestNotificationService_Resend(t *testing.T) {
	t.Parallel()
	const id = uint64(100)
	base := domain.Notification{
		ID: id, To: "user@example.com", From: "noreply@example.com", Subject: "s",
		Text: "t", HTML: "<p>t</p>", Type: domain.NotificationTypeEmail, Seen: true,
		Attachments: []domain.Attachment{{Filename: "a.txt", Path: "attachments/1/a.txt"}},
	}
	withStatus := func(status domain.NotificationStatus) domain.Notification {
		n := base
		n.Status = status
		return n
	}
	expectClone := func(repo *repomocks.MockNotificationRepository) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, n domain.Notification) (domain.Notification, error) {
				assert.NotEqual(t, id, n.ID)
				assert.NotZero(t, n.ID)
				assert.Equal(t, domain.NotificationStatusPending, n.Status)
				assert.False(t, n.Seen)
				assert.Equal(t, base.To, n.To)
				assert.Equal(t, base.Attachments, n.Attachments)
				return n, nil
			})
	}

	testCases := []struct {
		name       string
		force      bool
		mock       func(repo *repomocks.MockNotificationRepository)
		wantErr    error
		wantCloned bool
	}{
		{
			name: "PENDING 重新发布同一个通知",
			mock: func(repo *repomocks.MockNotificationRepository) {
				repo.EXPECT().GetByID(gomock.Any(), id).Return(withStatus(domain.NotificationStatusPending), nil)
				repo.EXPECT().Republish(gomock.Any(), withStatus(domain.NotificationStatusPending)).Return(nil)
			},
		},
		{
			name: "PROCESSING 拒绝",
			mock: func(repo *repomocks.MockNotificationRepository) {
				repo.EXPECT().GetByID(gomock.Any(), id).Return(withStatus(domain.NotificationStatusProcessing), nil)
			},
			wantErr: errs.ErrNotificationInFlight,
		},
		{
			name: "FAILED 克隆新通知",
			mock: func(repo *repomocks.MockNotificationRepository) {
				repo.EXPECT().GetByID(gomock.Any(), id).Return(withStatus(domain.NotificationStatusFailed), nil)
				expectClone(repo)
			},
			wantCloned: true,
		},
		{
			name: "COMPLETED 不强制时拒绝",
			mock: func(repo *repomocks.MockNotificationRepository) {
				repo.EXPECT().GetByID(gomock.Any(), id).Return(withStatus(domain.NotificationStatusCompleted), nil)
			},
			wantErr: errs.ErrNotificationCompleted,
		},
		{
			name:  "COMPLETED 强制时克隆",
			force: true,
			mock: func(repo *repomocks.MockNotificationRepository) {
				repo.EXPECT().GetByID(gomock.Any(), id).Return(withStatus(domain.NotificationStatusCompleted), nil)
				expectClone(repo)
			},
			wantCloned: true,
		},
		{
			name: "通知不存在",
			mock: func(repo *repomocks.MockNotificationRepository) {
				repo.EXPECT().GetByID(gomock.Any(), id).Return(domain.Notification{}, errs.ErrNotificationNotFound)
			},
			wantErr: errs.ErrNotificationNotFound,
		},
		{
			name: "克隆写入失败",
			mock: func(repo *repomocks.MockNotificationRepository) {
				repo.EXPECT().GetByID(gomock.Any(), id).Return(withStatus(domain.NotificationStatusFailed), nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.Notification{}, errs.ErrCreateNotificationFailed)
			},
			wantErr: errs.ErrCreateNotificationFailed,
		},
		{
			name: "内容不完整不克隆",
			mock: func(repo *repomocks.MockNotificationRepository) {
				n := withStatus(domain.NotificationStatusFailed)
				n.To = ""
				repo.EXPECT().GetByID(gomock.Any(), id).Return(n, nil)
			},
			wantErr: errs.ErrInvalidParameter,
		},
		{
			name: "未知状态",
			mock: func(repo *repomocks.MockNotificationRepository) {
				repo.EXPECT().GetByID(gomock.Any(), id).Return(withStatus("UNKNOWN"), nil)
			},
			wantErr: errs.ErrNotificationStatusConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := repomocks.NewMockNotificationRepository(ctrl)
			tc.mock(repo)
			res, err := NewNotificationService(repo, newIDGenerator()).Resend(t.Context(), id, tc.force)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCloned, res.Cloned)
			if tc.wantCloned {
				assert.NotEqual(t, id, res.ID)
			} else {
				assert.Equal(t, id, res.ID)
			}
		})
	}
}

func TestNotificationService_ListFailedOrPending(t *testing.T) {
	t.Parallel()
	statuses := []domain.NotificationStatus{domain.NotificationStatusFailed, domain.NotificationStatusPending}

	testCases := []struct {
		name       string
		page, size int
		wantOffset int
		wantLimit  int
		wantPage   int
		repoErr    error
	}{
		{name: "默认分页", page: 0, size: 0, wantOffset: 0, wantLimit: 20, wantPage: 1},
		{name: "第三页", page: 3, size: 10, wantOffset: 20, wantLimit: 10, wantPage: 3},
		{name: "每页最多100条", page: 2, size: 1000, wantOffset: 100, wantLimit: 100, wantPage: 2},
		{name: "查询失败", page: 1, size: 10, wantOffset: 0, wantLimit: 10, repoErr: errors.New("mock db error")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := repomocks.NewMockNotificationRepository(ctrl)
			items := []domain.Notification{{ID: 1, Status: domain.NotificationStatusFailed}}
			repo.EXPECT().ListByStatuses(gomock.Any(), statuses, "example", tc.wantOffset, tc.wantLimit).
				Return(items, int64(42), tc.repoErr)

			res, err := NewNotificationService(repo, newIDGenerator()).
				ListFailedOrPending(t.Context(), "example", tc.page, tc.size)
			if tc.repoErr != nil {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Page{Items: items, Total: 42, Page: tc.wantPage, ResultPerPage: tc.wantLimit}, res)
		})
	}
}

func TestProcessingTimeoutTask_HandleProcessingTimeout(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.UnixMilli(1700000000000)
	repo := repomocks.NewMockNotificationRepository(ctrl)
	repo.EXPECT().MarkTimeoutProcessingAsFailed(gomock.Any(), now.Add(-time.Minute), timeoutBatchSize).
		Return(int64(timeoutBatchSize), nil)
	repo.EXPECT().MarkTimeoutProcessingAsFailed(gomock.Any(), now.Add(-time.Minute), timeoutBatchSize).
		Return(int64(0), errors.New("mock db error"))

	task := NewProcessingTimeoutTask(nil, repo, time.Minute)
	task.now = func() time.Time { return now }
	task.sleepTime = time.Millisecond

	assert.NoError(t, task.HandleProcessingTimeout(t.Context()))
	assert.Error(t, task.HandleProcessingTimeout(t.Context()))
}

type unavailableLockClient struct{}

func (unavailableLockClient) NewLock(context.Context, string, time.Duration) (dlock.Lock, error) {
	return nil, errors.New("mock redis error")
}

func TestProcessingTimeoutTask_Done(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	task := NewProcessingTimeoutTask(unavailableLockClient{}, repomocks.NewMockNotificationRepository(ctrl), time.Minute)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	task.Start(ctx)

	select {
	case <-task.Done():
	default:
		t.Fatal("Start 返回之后应该关闭")
	}
}
