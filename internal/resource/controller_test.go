package resource

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waystation/internal/apiclient"
	"waystation/internal/models"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	listRFQs      func(ctx context.Context) ([]models.RFQ, error)
	createRFQ     func(ctx context.Context, p models.RFQCreatePayload) (models.RFQ, error)
	quotesForRFQ  func(ctx context.Context, id string) ([]models.Quote, error)
	listQuotes    func(ctx context.Context) ([]models.FullQuote, error)
	processEmail  func(ctx context.Context, s models.EmailSubmission) (models.Quote, error)
	clarification func(ctx context.Context, id string) (models.ClarificationEmail, error)
	listSuppliers func(ctx context.Context) ([]models.Supplier, error)
}

func (f *fakeBackend) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) ListRFQs(ctx context.Context) ([]models.RFQ, error) {
	f.record("ListRFQs")
	return f.listRFQs(ctx)
}

func (f *fakeBackend) CreateRFQ(ctx context.Context, p models.RFQCreatePayload) (models.RFQ, error) {
	f.record("CreateRFQ")
	return f.createRFQ(ctx, p)
}

func (f *fakeBackend) ListQuotesForRFQ(ctx context.Context, id string) ([]models.Quote, error) {
	f.record("ListQuotesForRFQ")
	return f.quotesForRFQ(ctx, id)
}

func (f *fakeBackend) ListQuotes(ctx context.Context) ([]models.FullQuote, error) {
	f.record("ListQuotes")
	return f.listQuotes(ctx)
}

func (f *fakeBackend) ProcessEmail(ctx context.Context, s models.EmailSubmission) (models.Quote, error) {
	f.record("ProcessEmail")
	return f.processEmail(ctx, s)
}

func (f *fakeBackend) GenerateClarificationEmail(ctx context.Context, id string) (models.ClarificationEmail, error) {
	f.record("GenerateClarificationEmail")
	return f.clarification(ctx, id)
}

func (f *fakeBackend) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	f.record("ListSuppliers")
	return f.listSuppliers(ctx)
}

func quote(id string, price float64) models.Quote {
	return models.Quote{ID: id, PricePerPound: models.Present(price)}
}

func TestControllerStartsIdle(t *testing.T) {
	c := NewRFQs(&fakeBackend{})
	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.False(t, snap.IsLoading())
	assert.False(t, snap.HasData)
	assert.NoError(t, snap.Err)
}

func TestExecuteSuccessRoundTrip(t *testing.T) {
	want := []models.Quote{quote("q1", 2.5)}
	fb := &fakeBackend{quotesForRFQ: func(ctx context.Context, id string) ([]models.Quote, error) {
		assert.Equal(t, "rfq-1", id)
		return want, nil
	}}
	c := NewQuotesForRFQ(fb)

	got, err := c.Execute(context.Background(), "rfq-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	snap := c.Snapshot()
	assert.Equal(t, Success, snap.State)
	assert.False(t, snap.IsLoading())
	assert.NoError(t, snap.Err)
	assert.True(t, snap.HasData)
	assert.Equal(t, want, snap.Data)
}

func TestFailedReExecuteKeepsPreviousData(t *testing.T) {
	q1 := []models.Quote{quote("q1", 2.5)}
	boom := &apiclient.APIError{Status: 500, Message: "database unavailable"}
	fail := false
	fb := &fakeBackend{quotesForRFQ: func(ctx context.Context, id string) ([]models.Quote, error) {
		if fail {
			return nil, boom
		}
		return q1, nil
	}}
	c := NewQuotesForRFQ(fb)

	_, err := c.Execute(context.Background(), "rfq-1")
	require.NoError(t, err)

	fail = true
	_, err = c.Execute(context.Background(), "rfq-1")
	require.ErrorIs(t, err, boom)

	snap := c.Snapshot()
	assert.Equal(t, Failure, snap.State)
	assert.False(t, snap.IsLoading())
	assert.Equal(t, "database unavailable", snap.Err.Error())
	assert.Equal(t, q1, snap.Data)
}

func TestEmptyEmailShortCircuits(t *testing.T) {
	fb := &fakeBackend{processEmail: func(ctx context.Context, s models.EmailSubmission) (models.Quote, error) {
		t.Fatal("remote call must not be issued")
		return models.Quote{}, nil
	}}
	c := NewProcessEmail(fb)

	_, err := c.Execute(context.Background(), models.EmailSubmission{RFQID: "rfq-1", RawText: ""})
	require.Error(t, err)
	assert.Equal(t, apiclient.KindPrecondition, apiclient.KindOf(err))
	assert.Equal(t, 0, fb.count("ProcessEmail"))

	snap := c.Snapshot()
	assert.Equal(t, Failure, snap.State)
	assert.ErrorIs(t, snap.Err, apiclient.ErrPrecondition)
}

func TestMissingIdentifiersShortCircuit(t *testing.T) {
	fb := &fakeBackend{}

	_, err := NewQuotesForRFQ(fb).Execute(context.Background(), "  ")
	assert.ErrorIs(t, err, apiclient.ErrPrecondition)

	_, err = NewClarificationEmail(fb).Execute(context.Background(), "")
	assert.ErrorIs(t, err, apiclient.ErrPrecondition)

	_, err = NewCreateRFQ(fb).Execute(context.Background(), models.RFQCreatePayload{})
	assert.ErrorIs(t, err, apiclient.ErrPrecondition)

	assert.Equal(t, 0, fb.count("ListQuotesForRFQ"))
	assert.Equal(t, 0, fb.count("GenerateClarificationEmail"))
	assert.Equal(t, 0, fb.count("CreateRFQ"))
}

func TestExecuteClearsErrorAndKeepsDataWhileLoading(t *testing.T) {
	release := make(chan struct{})
	calls := 0
	fb := &fakeBackend{listSuppliers: func(ctx context.Context) ([]models.Supplier, error) {
		calls++
		if calls == 1 {
			return []models.Supplier{{ID: "s1"}}, nil
		}
		if calls == 2 {
			return nil, errors.New("network down")
		}
		<-release
		return []models.Supplier{{ID: "s2"}}, nil
	}}
	c := NewSuppliers(fb)
	ctx := context.Background()

	_, _ = c.Execute(ctx, None{})
	_, _ = c.Execute(ctx, None{})
	require.Error(t, c.Snapshot().Err)

	loading := make(chan Snapshot[[]models.Supplier], 1)
	unsubscribe := c.Subscribe(func(s Snapshot[[]models.Supplier]) {
		if s.State == Loading {
			loading <- s
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		_, _ = c.Execute(ctx, None{})
		close(done)
	}()

	snap := <-loading
	assert.True(t, snap.IsLoading())
	assert.NoError(t, snap.Err)
	assert.Equal(t, []models.Supplier{{ID: "s1"}}, snap.Data)

	close(release)
	<-done
	assert.Equal(t, []models.Supplier{{ID: "s2"}}, c.Snapshot().Data)
}

func TestClarificationClearsPreviousDraftOnExecute(t *testing.T) {
	release := make(chan struct{})
	first := true
	fb := &fakeBackend{clarification: func(ctx context.Context, id string) (models.ClarificationEmail, error) {
		if first {
			first = false
			return models.ClarificationEmail{EmailText: "Hi Jane"}, nil
		}
		<-release
		return models.ClarificationEmail{}, errors.New("Failed to generate email: quota")
	}}
	c := NewClarificationEmail(fb)
	ctx := context.Background()

	text, err := c.Execute(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "Hi Jane", text)

	loading := make(chan Snapshot[string], 1)
	c.Subscribe(func(s Snapshot[string]) {
		if s.State == Loading {
			loading <- s
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := c.Execute(ctx, "q2")
		done <- err
	}()

	snap := <-loading
	assert.False(t, snap.HasData)
	assert.Empty(t, snap.Data)

	close(release)
	require.Error(t, <-done)
	final := c.Snapshot()
	assert.Equal(t, Failure, final.State)
	assert.Empty(t, final.Data)
	assert.Equal(t, "Failed to generate email: quota", final.Err.Error())
}

// Overlapping calls are not fenced: the outcome that lands last wins, even
// when it belongs to the call issued first.
func TestOverlappingExecutesLastArrivalWins(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	fb := &fakeBackend{quotesForRFQ: func(ctx context.Context, id string) ([]models.Quote, error) {
		if id == "old" {
			close(firstStarted)
			<-releaseFirst
			return []models.Quote{quote("stale", 9)}, nil
		}
		return []models.Quote{quote("fresh", 1)}, nil
	}}
	c := NewQuotesForRFQ(fb)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		_, _ = c.Execute(ctx, "old")
		close(done)
	}()
	<-firstStarted

	_, err := c.Execute(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "fresh", c.Snapshot().Data[0].ID)

	close(releaseFirst)
	<-done
	assert.Equal(t, "stale", c.Snapshot().Data[0].ID)
	assert.Equal(t, Success, c.Snapshot().State)
}

func TestSubscribeSeesTransitionsInOrder(t *testing.T) {
	fb := &fakeBackend{listRFQs: func(ctx context.Context) ([]models.RFQ, error) {
		return []models.RFQ{{ID: "r1", Item: "Almonds"}}, nil
	}}
	c := NewRFQs(fb)

	var states []State
	unsubscribe := c.Subscribe(func(s Snapshot[[]models.RFQ]) { states = append(states, s.State) })
	_, err := c.Execute(context.Background(), None{})
	require.NoError(t, err)
	unsubscribe()
	_, _ = c.Execute(context.Background(), None{})

	assert.Equal(t, []State{Loading, Success}, states)
}

func TestCreateRFQResultReturnedForChaining(t *testing.T) {
	fb := &fakeBackend{
		createRFQ: func(ctx context.Context, p models.RFQCreatePayload) (models.RFQ, error) {
			return models.RFQ{ID: "new-rfq", Item: p.Item}, nil
		},
		listRFQs: func(ctx context.Context) ([]models.RFQ, error) {
			return []models.RFQ{{ID: "new-rfq", Item: "Cashews"}}, nil
		},
	}
	create := NewCreateRFQ(fb)
	list := NewRFQs(fb)

	rfq, err := create.Execute(context.Background(), models.RFQCreatePayload{Item: "Cashews"})
	require.NoError(t, err)
	assert.Equal(t, "new-rfq", rfq.ID)

	rfqs, err := list.Execute(context.Background(), None{})
	require.NoError(t, err)
	assert.Len(t, rfqs, 1)
	assert.Equal(t, 1, fb.count("CreateRFQ"))
}

func TestAllQuotesController(t *testing.T) {
	fb := &fakeBackend{listQuotes: func(ctx context.Context) ([]models.FullQuote, error) {
		return []models.FullQuote{{Quote: quote("q1", 3), RFQ: models.RFQInfo{ID: "r1", Item: "Almonds"}}}, nil
	}}
	c := NewAllQuotes(fb)
	got, err := c.Execute(context.Background(), None{})
	require.NoError(t, err)
	assert.Equal(t, "Almonds", got[0].RFQ.Item)
	assert.Equal(t, "list_quotes", c.Name())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "failure", Failure.String())
}
