package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/quotis/quotation_batch_app/internal/apperrors"
	"github.com/quotis/quotation_batch_app/internal/core/domain"
	"github.com/quotis/quotation_batch_app/internal/core/ports/clients"
	portssvc "github.com/quotis/quotation_batch_app/internal/core/ports/services"
	"github.com/quotis/quotation_batch_app/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testUpload = "prenom;nom;start_date;end_date;tjm;quantity;domain;activity;complexity\n" +
	"Jane;Doe;2025-03-01;2025-03-31;650;10;124-Data;data-engineering;senior\n"

var assertableErr = errors.New("store unavailable")

// --- Test Suite ---
type BatchServiceTestSuite struct {
	suite.Suite
	mockStore *MockBatchStore
	mockCRM   *MockCRMClient
	service   portssvc.BatchSvcFacade
}

func (suite *BatchServiceTestSuite) SetupTest() {
	suite.mockStore = new(MockBatchStore)
	suite.mockCRM = new(MockCRMClient)
	suite.service = services.NewBatchService(
		suite.mockStore,
		suite.mockCRM,
		time.Hour,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

// --- Test Cases ---

func (suite *BatchServiceTestSuite) TestCreateBatch_Success() {
	ctx := context.Background()

	suite.mockCRM.On("ResolveResource", ctx, "Jane", "Doe").Return(&clients.EnrichedIdentity{
		ResourceID:      "res-1",
		ResourceName:    "Jane Doe",
		ResourceCode:    "JDO",
		OpportunityID:   "opp-1",
		CompanyID:       "cmp-1",
		BillingDetailID: "bil-1",
		ContactID:       "cnt-1",
	}, nil).Once()

	suite.mockStore.On("SaveBatch", ctx, mock.MatchedBy(func(b *domain.QuotationBatch) bool {
		return b.OwnerID == "owner-1" && b.Status == domain.BatchPending && len(b.Quotations) == 1
	}), time.Hour).Return(nil).Once()

	batch, err := suite.service.CreateBatch(ctx, []byte(testUpload), "owner-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(batch)
	suite.Equal("owner-1", batch.OwnerID)
	suite.Require().Len(batch.Quotations, 1)
	suite.Equal("res-1", batch.Quotations[0].ResourceID)
	suite.True(batch.Quotations[0].IsValid())

	suite.mockStore.AssertExpectations(suite.T())
	suite.mockCRM.AssertExpectations(suite.T())
}

func (suite *BatchServiceTestSuite) TestCreateBatch_ParseFailureIsNotPersisted() {
	ctx := context.Background()

	_, err := suite.service.CreateBatch(ctx, []byte("foo;bar\n1;2\n"), "owner-1")

	suite.Require().Error(err)
	var malformed *apperrors.MalformedInputError
	suite.ErrorAs(err, &malformed)
	suite.mockStore.AssertNotCalled(suite.T(), "SaveBatch", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BatchServiceTestSuite) TestCreateBatch_StoreFailure() {
	ctx := context.Background()

	suite.mockCRM.On("ResolveResource", ctx, "Jane", "Doe").Return(&clients.EnrichedIdentity{
		ResourceID: "res-1", ResourceCode: "JDO", OpportunityID: "opp-1",
	}, nil).Once()
	suite.mockStore.On("SaveBatch", ctx, mock.Anything, time.Hour).Return(assertableErr).Once()

	_, err := suite.service.CreateBatch(ctx, []byte(testUpload), "owner-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, assertableErr)
}

func (suite *BatchServiceTestSuite) TestGetBatch_NotFound() {
	ctx := context.Background()
	suite.mockStore.On("GetBatch", ctx, "gone").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetBatch(ctx, "gone")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BatchServiceTestSuite) TestCancelBatch_Idempotent() {
	ctx := context.Background()
	suite.mockStore.On("UpdateStatus", ctx, "batch-1", domain.BatchFailed).Return(true, nil).Once()
	suite.mockStore.On("UpdateStatus", ctx, "batch-1", domain.BatchFailed).Return(false, nil).Once()

	ok, err := suite.service.CancelBatch(ctx, "batch-1")
	suite.Require().NoError(err)
	suite.True(ok)

	ok, err = suite.service.CancelBatch(ctx, "batch-1")
	suite.Require().NoError(err)
	suite.False(ok, "second cancel reports absence without erroring")

	suite.mockStore.AssertExpectations(suite.T())
}

func (suite *BatchServiceTestSuite) TestExtendBatchTTL() {
	ctx := context.Background()
	suite.mockStore.On("ExtendTTL", ctx, "batch-1", 2*time.Hour).Return(true, nil).Once()

	ok, err := suite.service.ExtendBatchTTL(ctx, "batch-1", 2*time.Hour)

	suite.Require().NoError(err)
	suite.True(ok)
	suite.mockStore.AssertExpectations(suite.T())
}

func (suite *BatchServiceTestSuite) TestAttachBundlePath() {
	ctx := context.Background()
	suite.mockStore.On("AttachBundlePath", ctx, "batch-1", "/artifacts/bundle.zip").Return(true, nil).Once()

	ok, err := suite.service.AttachBundlePath(ctx, "batch-1", "/artifacts/bundle.zip")

	suite.Require().NoError(err)
	suite.True(ok)
	suite.mockStore.AssertExpectations(suite.T())
}

func (suite *BatchServiceTestSuite) TestListBatches() {
	ctx := context.Background()
	projections := []domain.ProgressProjection{{BatchID: "b2"}, {BatchID: "b1"}}
	suite.mockStore.On("ListForOwner", ctx, "owner-1", 20).Return(projections, nil).Once()

	got, err := suite.service.ListBatches(ctx, "owner-1", 20)

	suite.Require().NoError(err)
	suite.Equal(projections, got)
}

func TestBatchServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BatchServiceTestSuite))
}
