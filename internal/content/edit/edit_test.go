package edit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/platform/kv"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memDoc struct {
	mu       sync.Mutex
	wc       site.WebsiteContent
	replaced int
}

func (d *memDoc) Content(context.Context) (site.WebsiteContent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wc, nil
}

func (d *memDoc) Replace(_ context.Context, wc site.WebsiteContent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wc = wc
	d.replaced++
	return nil
}

type rewriterFunc func(ctx context.Context, selected, instruction, surrounding string) (string, error)

func (f rewriterFunc) Rewrite(ctx context.Context, selected, instruction, surrounding string) (string, error) {
	return f(ctx, selected, instruction, surrounding)
}

func sampleContent() site.WebsiteContent {
	return site.WebsiteContent{
		Sections: []site.Section{
			{ID: "hero-0", Type: "hero", Title: "Hero", Content: "Welcome to Acme bakery."},
			{ID: "features-1", Type: "features", Title: "Features", Content: "Our product is great. Our product is great."},
		},
		Parallax: true,
	}
}

var key = Key{OwnerID: "alice", DraftID: "d1"}

func TestApplyRewrite_FirstOccurrenceOnly(t *testing.T) {
	wc := sampleContent()
	got, err := ApplyRewrite(wc, "features-1", "great", "amazing")
	require.NoError(t, err)

	assert.Equal(t, "Our product is amazing. Our product is great.", got.Sections[1].Content)
	assert.Equal(t, wc.Sections[0], got.Sections[0])
	assert.True(t, got.Parallax)
	assert.Equal(t, "Our product is great. Our product is great.", wc.Sections[1].Content, "input must not be mutated")
}

func TestApplyRewrite_Errors(t *testing.T) {
	_, err := ApplyRewrite(sampleContent(), "nope", "great", "x")
	assert.ErrorIs(t, err, ErrSectionNotFound)
	_, err = ApplyRewrite(sampleContent(), "hero-0", "great", "x")
	assert.ErrorIs(t, err, ErrTextNotFound)
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	c := NewCoordinator(kv.NewMemory(), nil, Options{}, nil)

	snap, err := c.Select(ctx, key, sampleContent(), site.SelectionState{SectionID: "hero-0", Text: "Acme bakery", X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, site.EditSelecting, snap.State)
	require.NotNil(t, snap.Selection)
	assert.Equal(t, 10.0, snap.Selection.X)

	got, err := c.State(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, site.EditSelecting, got.State)
	assert.Equal(t, "Acme bakery", got.Selection.Text)

	// five characters is not enough and clears the previous selection
	snap, err = c.Select(ctx, key, sampleContent(), site.SelectionState{SectionID: "hero-0", Text: " Acme "})
	require.NoError(t, err)
	assert.Equal(t, site.EditIdle, snap.State)
	got, err = c.State(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, site.EditIdle, got.State)
	assert.Nil(t, got.Selection)
}

func TestSelect_Validation(t *testing.T) {
	ctx := context.Background()
	c := NewCoordinator(kv.NewMemory(), nil, Options{}, nil)

	_, err := c.Select(ctx, key, sampleContent(), site.SelectionState{SectionID: "missing", Text: "Welcome to"})
	assert.ErrorIs(t, err, ErrSectionNotFound)
	_, err = c.Select(ctx, key, sampleContent(), site.SelectionState{SectionID: "features-1", Text: "Welcome to"})
	assert.ErrorIs(t, err, ErrTextNotFound)
}

func TestSelect_LengthBoundary(t *testing.T) {
	ctx := context.Background()
	c := NewCoordinator(kv.NewMemory(), nil, Options{}, nil)
	wc := site.WebsiteContent{Sections: []site.Section{
		{ID: "hero-0", Type: "hero", Title: "Hero", Content: "Hello world 👍👍👍 and café au lait"},
	}}

	cases := []struct {
		text string
		want site.EditState
	}{
		{"Hello", site.EditIdle},
		{"Hello w", site.EditSelecting},
		// each emoji is two UTF-16 code units
		{"👍👍👍", site.EditSelecting},
		{"👍👍", site.EditIdle},
		{"café ", site.EditIdle},
		{"café au", site.EditSelecting},
	}
	for _, tc := range cases {
		snap, err := c.Select(ctx, key, wc, site.SelectionState{SectionID: "hero-0", Text: tc.text})
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, snap.State, tc.text)
	}
}

type failingLockStore struct {
	*kv.Memory
	err error
}

func (s failingLockStore) Get(ctx context.Context, k string) ([]byte, error) {
	if k == key.lockKey() {
		return nil, s.err
	}
	return s.Memory.Get(ctx, k)
}

func TestSelect_StoreErrorIsReported(t *testing.T) {
	ctx := context.Background()
	down := errors.New("connection refused")
	mem := kv.NewMemory()
	c := NewCoordinator(failingLockStore{Memory: mem, err: down}, nil, Options{}, nil)

	_, err := c.Select(ctx, key, sampleContent(), site.SelectionState{SectionID: "hero-0", Text: "Welcome to"})
	require.ErrorIs(t, err, down)

	_, err = mem.Get(ctx, key.sessionKey())
	assert.ErrorIs(t, err, kv.ErrNotFound, "no session is written when the claim cannot be checked")
}

func TestDismiss(t *testing.T) {
	ctx := context.Background()
	c := NewCoordinator(kv.NewMemory(), nil, Options{}, nil)
	_, err := c.Select(ctx, key, sampleContent(), site.SelectionState{SectionID: "hero-0", Text: "Welcome to"})
	require.NoError(t, err)

	require.NoError(t, c.Dismiss(ctx, key))
	snap, err := c.State(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, site.EditIdle, snap.State)
}

func TestConfirm_Success(t *testing.T) {
	ctx := context.Background()
	var gotSurrounding, gotInstruction string
	c := NewCoordinator(kv.NewMemory(), rewriterFunc(func(_ context.Context, selected, instruction, surrounding string) (string, error) {
		gotInstruction, gotSurrounding = instruction, surrounding
		return "is amazing", nil
	}), Options{}, nil)
	doc := &memDoc{wc: sampleContent()}

	_, err := c.Select(ctx, key, doc.wc, site.SelectionState{SectionID: "features-1", Text: "is great"})
	require.NoError(t, err)

	updated, err := c.Confirm(ctx, key, doc, "  make it stronger ")
	require.NoError(t, err)
	assert.Equal(t, "Our product is amazing. Our product is great.", updated.Sections[1].Content)
	assert.Equal(t, updated, doc.wc)
	assert.Equal(t, 1, doc.replaced)
	assert.Equal(t, "make it stronger", gotInstruction)
	assert.Equal(t, "Our product is great. Our product is great.", gotSurrounding)

	snap, err := c.State(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, site.EditIdle, snap.State)
}

func TestConfirm_EmptyRewriteDeletesSelection(t *testing.T) {
	ctx := context.Background()
	c := NewCoordinator(kv.NewMemory(), rewriterFunc(func(context.Context, string, string, string) (string, error) {
		return "", nil
	}), Options{}, nil)
	doc := &memDoc{wc: sampleContent()}

	_, err := c.Select(ctx, key, doc.wc, site.SelectionState{SectionID: "features-1", Text: "Our product is great."})
	require.NoError(t, err)

	updated, err := c.Confirm(ctx, key, doc, "delete this sentence")
	require.NoError(t, err)
	assert.Equal(t, " Our product is great.", updated.Sections[1].Content)
	assert.Equal(t, 1, doc.replaced)
}

func TestConfirm_EmptyInstructionKeepsSelection(t *testing.T) {
	ctx := context.Background()
	c := NewCoordinator(kv.NewMemory(), nil, Options{}, nil)
	_, err := c.Select(ctx, key, sampleContent(), site.SelectionState{SectionID: "hero-0", Text: "Welcome to"})
	require.NoError(t, err)

	_, err = c.Confirm(ctx, key, &memDoc{wc: sampleContent()}, "   ")
	assert.ErrorIs(t, err, ErrEmptyInstruction)

	snap, err := c.State(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, site.EditSelecting, snap.State)
}

func TestConfirm_NoSelection(t *testing.T) {
	c := NewCoordinator(kv.NewMemory(), nil, Options{}, nil)
	_, err := c.Confirm(context.Background(), key, &memDoc{wc: sampleContent()}, "shorter")
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestConfirm_FailureLeavesContentAndReturnsIdle(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("model unavailable")
	c := NewCoordinator(kv.NewMemory(), rewriterFunc(func(context.Context, string, string, string) (string, error) {
		return "", boom
	}), Options{}, nil)
	doc := &memDoc{wc: sampleContent()}
	_, err := c.Select(ctx, key, doc.wc, site.SelectionState{SectionID: "hero-0", Text: "Welcome to"})
	require.NoError(t, err)

	_, err = c.Confirm(ctx, key, doc, "shorter")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, sampleContent(), doc.wc)
	assert.Equal(t, 0, doc.replaced)

	snap, err := c.State(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, site.EditIdle, snap.State)
}

func TestConfirm_TextChangedSinceSelection(t *testing.T) {
	ctx := context.Background()
	called := false
	c := NewCoordinator(kv.NewMemory(), rewriterFunc(func(context.Context, string, string, string) (string, error) {
		called = true
		return "x", nil
	}), Options{}, nil)
	doc := &memDoc{wc: sampleContent()}
	_, err := c.Select(ctx, key, doc.wc, site.SelectionState{SectionID: "hero-0", Text: "Welcome to"})
	require.NoError(t, err)

	doc.wc = doc.wc.WithSection(0, site.Section{ID: "hero-0", Type: "hero", Title: "Hero", Content: "Hello."})

	_, err = c.Confirm(ctx, key, doc, "shorter")
	assert.ErrorIs(t, err, ErrTextNotFound)
	assert.False(t, called)

	snap, err := c.State(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, site.EditIdle, snap.State)
}

func TestConfirm_SingleRewriteInFlight(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	c := NewCoordinator(kv.NewMemory(), rewriterFunc(func(context.Context, string, string, string) (string, error) {
		calls++
		close(started)
		<-release
		return "Hello there", nil
	}), Options{}, nil)
	doc := &memDoc{wc: sampleContent()}
	_, err := c.Select(ctx, key, doc.wc, site.SelectionState{SectionID: "hero-0", Text: "Welcome to"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.Confirm(ctx, key, doc, "friendlier")
		done <- err
	}()
	<-started

	snap, err := c.State(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, site.EditRewriting, snap.State)

	_, err = c.Confirm(ctx, key, doc, "again")
	assert.ErrorIs(t, err, ErrRewriteInFlight)
	_, err = c.Select(ctx, key, doc.wc, site.SelectionState{SectionID: "hero-0", Text: "Acme bakery"})
	assert.ErrorIs(t, err, ErrRewriteInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Hello there Acme bakery.", doc.wc.Sections[0].Content)

	snap, err = c.State(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, site.EditIdle, snap.State)
}

func TestConfirm_CanceledRequestStillResets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := kv.NewMemory()
	c := NewCoordinator(store, rewriterFunc(func(ctx context.Context, _, _, _ string) (string, error) {
		cancel()
		return "", ctx.Err()
	}), Options{}, nil)
	doc := &memDoc{wc: sampleContent()}
	_, err := c.Select(ctx, key, doc.wc, site.SelectionState{SectionID: "hero-0", Text: "Welcome to"})
	require.NoError(t, err)

	_, err = c.Confirm(ctx, key, doc, "shorter")
	assert.ErrorIs(t, err, context.Canceled)

	snap, err := c.State(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, site.EditIdle, snap.State)
}
