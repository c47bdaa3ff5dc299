package tracknumbers

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/TrackMint/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type counterMock struct {
	mock.Mock
}

func (m *counterMock) Allocate(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

type repoMock struct {
	mock.Mock
}

func (m *repoMock) InsertTrackingNumber(ctx context.Context, rec *models.TrackingNumber) (*models.TrackingNumber, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrackingNumber), args.Error(1)
}

func (m *repoMock) GetByTrackingID(ctx context.Context, trackingID string) (*models.TrackingNumber, error) {
	args := m.Called(ctx, trackingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrackingNumber), args.Error(1)
}

type producerMock struct {
	mock.Mock
}

func (m *producerMock) Publish(ctx context.Context, topic string, key, value []byte) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type ServiceSuite struct {
	suite.Suite

	counter  *counterMock
	repo     *repoMock
	producer *producerMock
	svc      *Service
}

func (s *ServiceSuite) SetupTest() {
	s.counter = &counterMock{}
	s.repo = &repoMock{}
	s.producer = &producerMock{}
	s.svc = New(s.repo, s.counter, s.producer, nil, Config{
		CounterKey:  "product-tracking-id",
		Topic:       "product-tracking-id",
		CallTimeout: time.Second,
	})
}

func (s *ServiceSuite) TestGenerate_StepOrder() {
	s.counter.On("Allocate", mock.Anything, "product-tracking-id").
		Return(int64(1), nil).
		Once()
	s.repo.On("InsertTrackingNumber", mock.Anything, mock.MatchedBy(func(rec *models.TrackingNumber) bool {
		return rec.TrackingID == "LK1"
	})).
		Return(&models.TrackingNumber{ID: 1, TrackingID: "LK1", CreatedAt: time.Now().UTC()}, nil).
		Once()
	s.producer.On("Publish", mock.Anything, "product-tracking-id", []byte("LK1"), mock.Anything).
		Return(nil).
		Once()

	out, err := s.svc.Generate(context.Background(), shipmentReq())
	s.Require().NoError(err)
	s.Require().Equal("LK1", out.TrackingID)

	s.counter.AssertExpectations(s.T())
	s.repo.AssertExpectations(s.T())
	s.producer.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestGenerate_NoInsertWithoutAllocation() {
	s.counter.On("Allocate", mock.Anything, "product-tracking-id").
		Return(int64(0), errors.New("no value")).
		Once()

	_, err := s.svc.Generate(context.Background(), shipmentReq())
	s.Require().Error(err)

	s.repo.AssertNotCalled(s.T(), "InsertTrackingNumber", mock.Anything, mock.Anything)
	s.producer.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestGenerate_NoPublishWithoutPersist() {
	s.counter.On("Allocate", mock.Anything, "product-tracking-id").
		Return(int64(2), nil).
		Once()
	s.repo.On("InsertTrackingNumber", mock.Anything, mock.Anything).
		Return(nil, errors.New("insert failed")).
		Once()

	_, err := s.svc.Generate(context.Background(), shipmentReq())
	s.Require().Error(err)

	s.producer.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
