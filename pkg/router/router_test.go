package router

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/janus/pkg/engines"
	"github.com/TFMV/janus/pkg/errors"
	"github.com/TFMV/janus/pkg/models"
)

// MockEngine is a mock implementation of engines.Engine
type MockEngine struct {
	mock.Mock
	name string
}

func NewMockEngine(name string) *MockEngine {
	return &MockEngine{name: name}
}

func (m *MockEngine) Execute(ctx context.Context, query string, args ...interface{}) (*models.QueryResult, error) {
	callArgs := m.Called(ctx, query, args)
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).(*models.QueryResult), callArgs.Error(1)
}

func (m *MockEngine) ExecuteWithPlan(ctx context.Context, plan *models.PlanNode) (*models.QueryResult, error) {
	callArgs := m.Called(ctx, plan)
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).(*models.QueryResult), callArgs.Error(1)
}

func (m *MockEngine) GetName() string {
	return m.name
}

func newMockPair() (*MockEngine, *MockEngine) {
	return NewMockEngine(engines.NameTransactional), NewMockEngine(engines.NameAnalytical)
}

func TestRouter_RouteQuery_EngineSelection(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		toAnalytical bool
	}{
		{"point lookup", "SELECT * FROM users WHERE id = 1", false},
		{"insert", "INSERT INTO users (id, name) VALUES (1, 'alice')", false},
		{"update", "UPDATE users SET name = 'bob' WHERE id = 1", false},
		{"delete", "DELETE FROM users WHERE id = 1", false},
		{"mutation with join stays transactional", "UPDATE users SET name = 'x' FROM users JOIN orders ON users.id = orders.user_id", false},
		{"join routes to analytical", "SELECT u.name, o.total FROM users u JOIN orders o ON u.id = o.user_id", true},
		{"group by routes to analytical", "SELECT region, COUNT(*) FROM events GROUP BY region", true},
		{"bare aggregate routes to analytical", "SELECT COUNT(*) FROM events", true},
		{"order by routes to analytical", "SELECT * FROM logs ORDER BY ts DESC", true},
		{"limit routes to analytical", "SELECT * FROM sessions LIMIT 10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transactional, analytical := newMockPair()
			result := &models.QueryResult{
				Columns: []string{"id"},
				Rows:    [][]interface{}{{int64(1)}},
			}

			selected, idle := transactional, analytical
			if tt.toAnalytical {
				selected, idle = analytical, transactional
			}
			selected.On("Execute", mock.Anything, tt.query, mock.Anything).
				Return(result, nil).Once()

			r := NewRouter(transactional, analytical)
			got, err := r.RouteQuery(context.Background(), tt.query)

			require.NoError(t, err)
			assert.Equal(t, result, got)
			selected.AssertExpectations(t)
			idle.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRouter_RouteQuery_DispatchesExactlyOnce(t *testing.T) {
	transactional, analytical := newMockPair()
	result := &models.QueryResult{
		Columns: []string{"region", "count"},
		Rows:    [][]interface{}{{"emea", int64(42)}},
	}
	analytical.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(result, nil)

	r := NewRouter(transactional, analytical)
	_, err := r.RouteQuery(context.Background(), "SELECT region, COUNT(*) FROM events GROUP BY region")

	require.NoError(t, err)
	analytical.AssertNumberOfCalls(t, "Execute", 1)
	transactional.AssertNumberOfCalls(t, "Execute", 0)
}

func TestRouter_RouteQuery_ForwardsArgs(t *testing.T) {
	transactional, analytical := newMockPair()
	result := &models.QueryResult{Columns: []string{"id"}}
	transactional.On("Execute", mock.Anything, "SELECT * FROM users WHERE id = ?", []interface{}{int64(7)}).
		Return(result, nil).Once()

	r := NewRouter(transactional, analytical)
	_, err := r.RouteQuery(context.Background(), "SELECT * FROM users WHERE id = ?", int64(7))

	require.NoError(t, err)
	transactional.AssertExpectations(t)
}

func TestRouter_RouteQuery_WrapsEngineError(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		toAnalytical  bool
		wantQueryType string
		wantEngine    string
	}{
		{
			name:          "transactional failure",
			query:         "INSERT INTO users (id) VALUES (1)",
			toAnalytical:  false,
			wantQueryType: "Transactional",
			wantEngine:    engines.NameTransactional,
		},
		{
			name:          "analytical failure",
			query:         "SELECT region, COUNT(*) FROM events GROUP BY region",
			toAnalytical:  true,
			wantQueryType: "Analytical",
			wantEngine:    engines.NameAnalytical,
		},
		{
			name:          "hybrid failure attributed to analytical engine",
			query:         "SELECT u.name FROM users u JOIN orders o ON u.id = o.user_id",
			toAnalytical:  true,
			wantQueryType: "Hybrid",
			wantEngine:    engines.NameAnalytical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transactional, analytical := newMockPair()
			selected := transactional
			if tt.toAnalytical {
				selected = analytical
			}
			selected.On("Execute", mock.Anything, tt.query, mock.Anything).
				Return(nil, assert.AnError).Once()

			r := NewRouter(transactional, analytical)
			result, err := r.RouteQuery(context.Background(), tt.query)

			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.IsEngineExecution(err))
			assert.True(t, stderrors.Is(err, assert.AnError))

			var routerErr *errors.RouterError
			require.True(t, stderrors.As(err, &routerErr))
			assert.Equal(t, tt.wantQueryType, routerErr.Details[errors.DetailQueryType])
			assert.Equal(t, tt.wantEngine, routerErr.Details[errors.DetailEngine])
			selected.AssertExpectations(t)
		})
	}
}

func TestRouter_RouteQuery_CanceledContextSkipsDispatch(t *testing.T) {
	transactional, analytical := newMockPair()
	r := NewRouter(transactional, analytical)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.RouteQuery(ctx, "SELECT * FROM users WHERE id = 1")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsCancellation(err))
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Equal(t, errors.CodeCanceled, errors.GetCode(err))
	transactional.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	analytical.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_RouteQuery_DeadlineExceededSkipsDispatch(t *testing.T) {
	transactional, analytical := newMockPair()
	r := NewRouter(transactional, analytical)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	result, err := r.RouteQuery(ctx, "SELECT region, COUNT(*) FROM events GROUP BY region")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsCancellation(err))
	assert.Equal(t, errors.CodeDeadlineExceeded, errors.GetCode(err))

	var routerErr *errors.RouterError
	require.True(t, stderrors.As(err, &routerErr))
	assert.Equal(t, "Analytical", routerErr.Details[errors.DetailQueryType])
	analytical.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_RouteWithPlan_RootSelectsEngine(t *testing.T) {
	tests := []struct {
		name         string
		plan         *models.PlanNode
		toAnalytical bool
	}{
		{
			name:         "bare scan runs transactional",
			plan:         models.NewScanNode(map[string]string{models.PlanAttrQuery: "SELECT * FROM users WHERE id = 1"}),
			toAnalytical: false,
		},
		{
			name: "join root runs analytical",
			plan: models.NewJoinNode(models.JoinKindInner,
				models.NewScanNode(map[string]string{models.PlanAttrQuery: "SELECT * FROM users"}),
				map[string]string{models.PlanAttrCondition: "u.id = o.user_id"}),
			toAnalytical: true,
		},
		{
			name: "limit root runs analytical",
			plan: models.NewLimitNode(
				models.NewSortNode(
					models.NewScanNode(map[string]string{models.PlanAttrQuery: "SELECT * FROM logs"}),
					map[string]string{models.PlanAttrOrderBy: "ts DESC"}),
				map[string]string{models.PlanAttrLimit: "10"}),
			toAnalytical: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transactional, analytical := newMockPair()
			result := &models.QueryResult{Columns: []string{"id"}}

			selected, idle := transactional, analytical
			if tt.toAnalytical {
				selected, idle = analytical, transactional
			}
			selected.On("ExecuteWithPlan", mock.Anything, tt.plan).
				Return(result, nil).Once()

			r := NewRouter(transactional, analytical)
			got, err := r.RouteWithPlan(context.Background(), tt.plan)

			require.NoError(t, err)
			assert.Equal(t, result, got)
			selected.AssertExpectations(t)
			idle.AssertNotCalled(t, "ExecuteWithPlan", mock.Anything, mock.Anything)
		})
	}
}

func TestRouter_RouteWithPlan_RejectsInvalidPlan(t *testing.T) {
	transactional, analytical := newMockPair()
	r := NewRouter(transactional, analytical)

	scanWithChild := models.NewScanNode(nil)
	scanWithChild.Children = []*models.PlanNode{models.NewScanNode(nil)}

	tests := []struct {
		name string
		plan *models.PlanNode
	}{
		{"nil plan", nil},
		{"scan with child", scanWithChild},
		{"wrapper without child", &models.PlanNode{Kind: models.PlanKindLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.RouteWithPlan(context.Background(), tt.plan)

			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, errors.CodeInvalidPlan, errors.GetCode(err))
		})
	}

	transactional.AssertNotCalled(t, "ExecuteWithPlan", mock.Anything, mock.Anything)
	analytical.AssertNotCalled(t, "ExecuteWithPlan", mock.Anything, mock.Anything)
}

func TestRouter_RouteWithPlan_WrapsEngineError(t *testing.T) {
	transactional, analytical := newMockPair()
	plan := models.NewJoinNode(models.JoinKindInner,
		models.NewScanNode(map[string]string{models.PlanAttrQuery: "SELECT * FROM users"}),
		nil)
	analytical.On("ExecuteWithPlan", mock.Anything, plan).
		Return(nil, assert.AnError).Once()

	r := NewRouter(transactional, analytical)
	result, err := r.RouteWithPlan(context.Background(), plan)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsEngineExecution(err))

	var routerErr *errors.RouterError
	require.True(t, stderrors.As(err, &routerErr))
	assert.Equal(t, "Hybrid", routerErr.Details[errors.DetailQueryType])
	assert.Equal(t, engines.NameAnalytical, routerErr.Details[errors.DetailEngine])
}

func TestRouter_ExplainQuery(t *testing.T) {
	transactional, analytical := newMockPair()
	r := NewRouter(transactional, analytical)

	tests := []struct {
		name  string
		query string
	}{
		{"bare scan", "SELECT * FROM users WHERE id = 1"},
		{"join", "SELECT u.name FROM users u JOIN orders o ON u.id = o.user_id"},
		{"aggregation", "SELECT region, COUNT(*) FROM events GROUP BY region"},
		{"full pipeline", "SELECT c.name, SUM(o.total) FROM customers c JOIN orders o ON c.id = o.customer_id GROUP BY c.name ORDER BY SUM(o.total) DESC LIMIT 5"},
		{"empty query", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			explanation, err := r.ExplainQuery(context.Background(), tt.query)

			require.NoError(t, err)
			assert.NotEmpty(t, explanation)
		})
	}

	transactional.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	analytical.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_Explain(t *testing.T) {
	transactional, analytical := newMockPair()
	r := NewRouter(transactional, analytical)

	result, err := r.Explain(context.Background(), "SELECT region, COUNT(*) FROM events GROUP BY region")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Analytical", result.QueryType)
	assert.Equal(t, engines.NameAnalytical, result.Engine)
	require.NotNil(t, result.Plan)
	assert.Equal(t, models.PlanKindAggregation, result.Plan.Kind)
	assert.NotEmpty(t, result.Explanation)
}

func TestRouter_ClassifyQuery(t *testing.T) {
	transactional, analytical := newMockPair()
	r := NewRouter(transactional, analytical)

	assert.Equal(t, models.QueryTypeTransactional, r.ClassifyQuery("SELECT * FROM users WHERE id = 1"))
	assert.Equal(t, models.QueryTypeHybrid, r.ClassifyQuery("SELECT u.name FROM users u JOIN orders o ON u.id = o.user_id"))
	assert.Equal(t, models.QueryTypeAnalytical, r.ClassifyQuery("SELECT COUNT(*) FROM events"))
}

func TestRouter_ConcurrentRouting(t *testing.T) {
	transactional, analytical := newMockPair()
	result := &models.QueryResult{Columns: []string{"id"}}
	transactional.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(result, nil)
	analytical.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(result, nil)

	r := NewRouter(transactional, analytical)
	queries := []string{
		"SELECT * FROM users WHERE id = 1",
		"INSERT INTO users (id) VALUES (1)",
		"SELECT region, COUNT(*) FROM events GROUP BY region",
		"SELECT u.name FROM users u JOIN orders o ON u.id = o.user_id",
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		for _, q := range queries {
			wg.Add(1)
			go func(q string) {
				defer wg.Done()
				_, err := r.RouteQuery(context.Background(), q)
				assert.NoError(t, err)
			}(q)
		}
	}
	wg.Wait()
}
