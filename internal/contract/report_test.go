package contract

import (
	"testing"

	"github.com/alexanderramin/tally/internal/aggregate"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewReportRequest_SetsDefaults(t *testing.T) {
	req := NewReportRequest("acme", "globex")

	assert.Equal(t, []string{"acme", "globex"}, req.Slugs)
	assert.Equal(t, domain.HoursConsulting, req.Field)
	assert.Equal(t, aggregate.ByManager, req.Hierarchy)
	assert.Equal(t, aggregate.SortHours, req.SortBy)
	assert.False(t, req.Strict)
	assert.Empty(t, req.SnapshotID)
	assert.Nil(t, req.Now)
}

func TestNewReportRequest_NoSlugs(t *testing.T) {
	req := NewReportRequest()
	assert.Empty(t, req.Slugs)
}

func TestReportError_Message(t *testing.T) {
	err := &ReportError{Code: ReportErrInvalidSort, Message: `unknown sort column "size"`}
	assert.EqualError(t, err, `INVALID_SORT: unknown sort column "size"`)
}

func TestReportResponse_Empty(t *testing.T) {
	assert.True(t, (&ReportResponse{}).Empty())
	assert.False(t, (&ReportResponse{Roots: []*aggregate.Node{{}}}).Empty())
}
