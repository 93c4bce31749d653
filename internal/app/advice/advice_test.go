package advice

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

type stubGenerator struct {
	reply string
	err   error
	last  string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.last = prompt
	return g.reply, g.err
}

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func proUser() domain.User {
	u := domain.NewUser("pro@x.com", "Pro", "hash", time.Now())
	u.IsPro = true
	u.Goal = "work abroad"
	return u
}

func TestShouldAdvise(t *testing.T) {
	svc := NewService(nil, &stubGenerator{})
	pro := proUser()
	free := domain.NewUser("free@x.com", "Free", "hash", time.Now())

	cases := []struct {
		name         string
		user         domain.User
		firstAttempt bool
		completed    int
		want         bool
	}{
		{"every fifth lesson", pro, true, 5, true},
		{"tenth lesson", pro, true, 10, true},
		{"off cadence", pro, true, 4, false},
		{"replay", pro, false, 5, false},
		{"free account", free, true, 5, false},
		{"nothing completed", pro, true, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.ShouldAdvise(tc.user, tc.firstAttempt, tc.completed); got != tc.want {
				t.Errorf("ShouldAdvise = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShouldAdvise_Disabled(t *testing.T) {
	svc := NewService(nil, nil)
	if svc.Enabled() {
		t.Error("Enabled() = true with nil generator")
	}
	if svc.ShouldAdvise(proUser(), true, 5) {
		t.Error("ShouldAdvise = true with nil generator")
	}
}

func TestChat(t *testing.T) {
	gen := &stubGenerator{reply: "Отличный вопрос!"}
	svc := NewService(testDB(t), gen)
	ctx := context.Background()

	if _, err := svc.Chat(ctx, domain.NewUser("f@x.com", "F", "h", time.Now()), "hi"); !errors.Is(err, domain.ErrProOnly) {
		t.Errorf("free account: err = %v, want ErrProOnly", err)
	}

	u := proUser()
	reply, err := svc.Chat(ctx, u, "how do articles work?")
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if reply != "Отличный вопрос!" {
		t.Errorf("reply = %q", reply)
	}
	for _, want := range []string{u.Name, string(u.Level), u.Goal, "how do articles work?"} {
		if !strings.Contains(gen.last, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
}

func TestChat_QuotaMapsToSentinel(t *testing.T) {
	gen := &stubGenerator{err: &genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"}}
	svc := NewService(testDB(t), gen)

	_, err := svc.Chat(context.Background(), proUser(), "hi")
	if !errors.Is(err, domain.ErrAdviceQuota) {
		t.Errorf("err = %v, want ErrAdviceQuota", err)
	}
}

func TestAnalyze_NoData(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, &stubGenerator{reply: "разбор"})

	u, err := db.CreateUser(proUser())
	if err != nil {
		t.Fatal(err)
	}

	text, n, err := svc.Analyze(context.Background(), u)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if n != 0 {
		t.Errorf("lessons analyzed = %d, want 0", n)
	}
	if text == "" {
		t.Error("no placeholder text for an empty history")
	}
}
