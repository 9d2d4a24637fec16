package handlers

import (
	"context"
	"sync"
	"testing"

	"seds-backend/application/ports/mocks"
	"seds-backend/application/queries"
	"seds-backend/application/queries/bus"
	"seds-backend/domain/config"
	"seds-backend/domain/core/entities"
	"seds-backend/domain/core/grid"
	"seds-backend/pkg/auth"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const stateForm = "AL-2021-1-21E"

var stateUser = auth.UserContext{UserID: "sub-1", Username: "jdoe", Roles: []string{auth.RoleState}, States: []string{"AL"}}

func rows() []grid.Row {
	return []grid.Row{
		{"col1": "", "col2": "% of FPL 0-133", "col3": "% of FPL 134-200"},
		{"col1": "A. Fee-for-Service", "col2": 1200.6, "col3": "3"},
		{"col1": "B. Managed Care", "col2": nil, "col3": 4},
	}
}

type formFixture struct {
	answers   *mocks.AnswerRepository
	questions *mocks.QuestionRepository
	forms     *mocks.StateFormRepository
	handler   *FormQueryHandler
}

func newFormFixture(status *entities.FormStatus) *formFixture {
	f := &formFixture{
		answers:   &mocks.AnswerRepository{},
		questions: &mocks.QuestionRepository{},
		forms:     &mocks.StateFormRepository{},
	}
	f.forms.On("Get", mock.Anything, stateForm).Return(status, nil)
	f.answers.On("ListByStateForm", mock.Anything, stateForm).Return([]entities.AnswerRecord{
		{AnswerEntry: stateForm + "-0105-01", StateForm: stateForm, Question: "2021-21E-01", RangeID: "0105", Rows: rows()},
		{AnswerEntry: stateForm + "-0105-05", StateForm: stateForm, Question: "2021-21E-05", RangeID: "0105", Rows: rows()},
		{AnswerEntry: stateForm + "-0000-01", StateForm: stateForm, Question: "2021-21E-01", RangeID: "0000", Rows: rows()},
		{AnswerEntry: stateForm + "-0105-02", StateForm: stateForm, Question: "2021-21E-02", RangeID: "0105", Rows: rows()},
	}, nil)
	f.questions.On("ListByFormYear", mock.Anything, "21E", 2021).Return([]entities.Question{
		{Question: "2021-21E-05", Label: "Average months of enrollment", Type: "synthesized_table"},
		{Question: "2021-21E-01", Label: "Children &&&VARIABLE&&& enrolled", Type: config.QuestionTypeDataGrid},
		{Question: "2021-21E-02", Label: "Notes", Type: "text"},
	}, nil)

	f.handler = NewFormQueryHandler(f.answers, f.questions, f.forms, config.Static{Config: config.DefaultDomainConfig()}, zap.NewNop())
	return f
}

func inProgress() *entities.FormStatus {
	return &entities.FormStatus{StateForm: stateForm, Status: entities.StatusInProgress, StatusID: entities.StatusIDInProgress}
}

func TestGetForm(t *testing.T) {
	f := newFormFixture(inProgress())

	state, err := f.handler.GetForm(context.Background(), queries.GetFormQuery{State: "AL", Year: 2021, Quarter: 1, Form: "21E", Actor: stateUser})

	require.NoError(t, err)
	assert.Equal(t, "2021-21E-01", state.Questions[0].Question)
	assert.Len(t, state.Answers, 4)
	assert.Equal(t, []string{"0000", "0105"}, state.Tabs)
	assert.Equal(t, stateForm, state.StatusData.StateForm)
}

func TestGetFormRejectsOtherState(t *testing.T) {
	f := newFormFixture(inProgress())

	_, err := f.handler.GetForm(context.Background(), queries.GetFormQuery{State: "MD", Year: 2021, Quarter: 1, Form: "21E", Actor: stateUser})

	assert.ErrorIs(t, err, pkgerrors.ErrUserNotAuthorized)
	f.forms.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestGetGrid(t *testing.T) {
	f := newFormFixture(inProgress())

	view, err := f.handler.GetGrid(context.Background(), queries.GetGridQuery{AnswerEntry: stateForm + "-0105-01", Actor: stateUser})

	require.NoError(t, err)
	assert.Equal(t, "Children between the ages of 1 and 5 enrolled", view.Label)
	assert.Equal(t, []string{"", "% of FPL 0-133", "% of FPL 134-200"}, view.ColumnHeaders)
	assert.Equal(t, []string{"A. Fee-for-Service", "B. Managed Care"}, view.RowLabels)
	assert.Equal(t, [][]string{{"1,201", "3"}, {"0", "4"}}, view.Cells)
	assert.Equal(t, []string{"1,204", "4"}, view.RowTotals)
	assert.Equal(t, "1,208", view.GrandTotal)
	assert.False(t, view.ReadOnly)
	assert.False(t, view.Synthesized)
}

func TestGetGridReadOnly(t *testing.T) {
	t.Run("synthesized ordinal", func(t *testing.T) {
		f := newFormFixture(inProgress())
		view, err := f.handler.GetGrid(context.Background(), queries.GetGridQuery{AnswerEntry: stateForm + "-0105-05", Actor: stateUser})
		require.NoError(t, err)
		assert.True(t, view.Synthesized)
		assert.True(t, view.ReadOnly)
	})

	t.Run("certified form", func(t *testing.T) {
		f := newFormFixture(&entities.FormStatus{StateForm: stateForm, StatusID: entities.StatusIDProvisional})
		view, err := f.handler.GetGrid(context.Background(), queries.GetGridQuery{AnswerEntry: stateForm + "-0105-01", Actor: stateUser})
		require.NoError(t, err)
		assert.True(t, view.ReadOnly)
	})

	t.Run("unknown entry", func(t *testing.T) {
		f := newFormFixture(inProgress())
		_, err := f.handler.GetGrid(context.Background(), queries.GetGridQuery{AnswerEntry: stateForm + "-0105-99", Actor: stateUser})
		assert.ErrorIs(t, err, pkgerrors.ErrAnswerNotFound)
	})
}

func TestGetGridSkipsNonGridQuestions(t *testing.T) {
	f := newFormFixture(inProgress())

	_, err := f.handler.GetGrid(context.Background(), queries.GetGridQuery{AnswerEntry: stateForm + "-0105-02", Actor: stateUser})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestRenderGridSynthesized(t *testing.T) {
	f := newFormFixture(inProgress())

	view, err := f.handler.RenderGrid(context.Background(), queries.RenderGridQuery{
		Rows:        rows(),
		Precision:   1,
		Synthesized: true,
		RowTotals:   []float64{10, 20},
	})

	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, view.Totals.RowTotals)
	assert.Equal(t, 15.0, view.Totals.GrandTotal)
	assert.Equal(t, []string{"10.0", "20.0"}, view.RowTotals)
	assert.Equal(t, "15.0", view.GrandTotal)
	assert.True(t, view.ReadOnly)
}

func TestBuildGridViewExternalColumnTotals(t *testing.T) {
	view := queries.BuildGridView(rows(), queries.ViewOptions{ColumnTotals: []float64{-5, 99}})

	assert.Equal(t, []string{"0", "99"}, view.ColumnTotals)
	assert.Equal(t, 94.0, view.ColumnSum)
	assert.InDelta(t, 1207.6, view.Totals.GrandTotal, 1e-9)
}

func TestListFormTypesSorted(t *testing.T) {
	formTypes := &mocks.FormTypeRepository{}
	formTypes.On("List", mock.Anything).Return([]entities.FormType{
		{Form: "64.21E", SortOrder: "3"},
		{Form: "21E", SortOrder: "1"},
		{Form: "64.EC", SortOrder: "3"},
	}, nil)
	h := NewCatalogQueryHandler(formTypes, &mocks.FormTemplateRepository{})

	forms, err := h.ListFormTypes(context.Background(), queries.ListFormTypesQuery{})

	require.NoError(t, err)
	assert.Equal(t, "21E", forms[0].Form)
	assert.Equal(t, "64.21E", forms[1].Form)
	assert.Equal(t, "64.EC", forms[2].Form)
}

func TestGetFormTemplateNotFound(t *testing.T) {
	templates := &mocks.FormTemplateRepository{}
	templates.On("GetByYear", mock.Anything, 2030).Return([]entities.FormTemplate{}, nil)
	h := NewCatalogQueryHandler(&mocks.FormTypeRepository{}, templates)

	_, err := h.GetFormTemplate(context.Background(), queries.GetFormTemplateQuery{Year: 2030})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "Could not find form template for year: 2030")
}

func TestUserQueries(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("List", mock.Anything).Return([]entities.User{{UserID: "10"}, {UserID: "2"}, {UserID: "1"}}, nil)
	users.On("Get", mock.Anything, "2").Return(&entities.User{UserID: "2", UsernameSub: "sub-2"}, nil)
	users.On("GetBySub", mock.Anything, "sub-2").Return(&entities.User{UserID: "2"}, nil)
	h := NewUserQueryHandler(users)
	admin := auth.UserContext{UserID: "sub-0", Roles: []string{auth.RoleAdmin}}

	list, err := h.ListUsers(context.Background(), queries.ListUsersQuery{Actor: admin})
	require.NoError(t, err)
	assert.Equal(t, "1", list[0].UserID)
	assert.Equal(t, "10", list[2].UserID)

	_, err = h.ListUsers(context.Background(), queries.ListUsersQuery{Actor: stateUser})
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotAuthorized)

	self := auth.UserContext{UserID: "sub-2", Roles: []string{auth.RoleState}}
	user, err := h.GetUser(context.Background(), queries.GetUserQuery{UserID: "2", Actor: self})
	require.NoError(t, err)
	assert.Equal(t, "2", user.UserID)

	_, err = h.GetUser(context.Background(), queries.GetUserQuery{UserID: "2", Actor: stateUser})
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotAuthorized)

	user, err = h.GetUserBySub(context.Background(), queries.GetUserBySubQuery{UsernameSub: "sub-2"})
	require.NoError(t, err)
	assert.Equal(t, "2", user.UserID)
}

type mapCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func (c *mapCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func TestRegisterCachesCatalogQueries(t *testing.T) {
	formTypes := &mocks.FormTypeRepository{}
	formTypes.On("List", mock.Anything).Return([]entities.FormType{{Form: "21E"}}, nil).Once()

	b := bus.NewQueryBus(bus.NewLoggingMiddleware(zap.NewNop()), bus.NewCachingMiddleware(&mapCache{items: map[string]interface{}{}}, 60))
	f := newFormFixture(inProgress())
	require.NoError(t, Register(b, f.handler, NewCatalogQueryHandler(formTypes, &mocks.FormTemplateRepository{}), NewUserQueryHandler(&mocks.UserRepository{})))

	for i := 0; i < 3; i++ {
		result, err := b.Ask(context.Background(), queries.ListFormTypesQuery{})
		require.NoError(t, err)
		assert.Len(t, result.([]entities.FormType), 1)
	}
	formTypes.AssertNumberOfCalls(t, "List", 1)

	_, err := b.Ask(context.Background(), queries.GetFormQuery{State: "AL"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}
