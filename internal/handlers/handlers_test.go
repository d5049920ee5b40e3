package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"quillpress/internal/cache"
	"quillpress/internal/middleware"
	"quillpress/internal/render"
	"quillpress/internal/session"
	"quillpress/internal/store"
	"quillpress/internal/upload"
)

const testSecret = "handler-test-secret"

// testEnv wires the handler groups against a mocked database and an
// in-process miniredis, so handler tests run without Postgres or Valkey.
type testEnv struct {
	mock      sqlmock.Sqlmock
	mr        *miniredis.Miniredis
	client    *redis.Client
	sessions  *session.Store
	pageCache *cache.PageCache
	uploads   *upload.Store
	public    *Public
	auth      *Auth
	admin     *Admin
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	uploads, err := upload.NewStore(t.TempDir(), []string{"png", "jpg", "jpeg", "gif", "webp"})
	if err != nil {
		t.Fatalf("failed to create upload store: %v", err)
	}

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}

	posts := store.NewPostStore(db)
	categories := store.NewCategoryStore(db)
	comments := store.NewCommentStore(db)
	admins := store.NewAdminStore(db)
	sessions := session.NewStore(client)
	pageCache := cache.NewPageCache(client, 0)

	return &testEnv{
		mock:      mock,
		mr:        mr,
		client:    client,
		sessions:  sessions,
		pageCache: pageCache,
		uploads:   uploads,
		public:    NewPublic(renderer, posts, categories, comments, uploads, pageCache),
		auth:      NewAuth(renderer, sessions, admins, testSecret),
		admin:     NewAdmin(renderer, posts, categories, comments, uploads, pageCache, testSecret, 16<<20),
	}
}

func (e *testEnv) expectationsMet(t *testing.T) {
	t.Helper()
	if err := e.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet database expectations: %v", err)
	}
}

// postColumnNames mirrors the joined column list the post store selects.
var postColumnNames = []string{
	"id", "title", "subtitle", "author", "readtime", "content",
	"content_format", "excerpt", "slug", "image", "views", "published",
	"category_id", "created_at", "updated_at", "name", "c_slug",
}

func postRows() *sqlmock.Rows {
	return sqlmock.NewRows(postColumnNames)
}

// addPost appends a minimal published post row.
func addPost(rows *sqlmock.Rows, id int64, title, slug string, views int64) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, title, "", "Admin", "3 min read", "<p>Body of "+title+"</p>",
		"html", "Excerpt of "+title, slug, nil, views, true,
		nil, now, now, nil, nil,
	)
}

func categoryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "slug", "created_at", "post_count"})
}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func commentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "body", "approved", "post_id", "parent_id", "created_at"})
}

// expectSidebar registers the two queries every sidebar load performs.
func (e *testEnv) expectSidebar() {
	e.mock.ExpectQuery(`FILTER \(WHERE p\.published\)`).
		WillReturnRows(categoryRows().AddRow(1, "Go", "go", time.Now(), 2))
	e.mock.ExpectQuery(`DESC LIMIT \$1`).WithArgs(recentCount).
		WillReturnRows(addPost(postRows(), 7, "Recent One", "recent-one", 1))
}

// ctxWithAdminSession attaches a signed-in admin session to a request,
// the way the session-loading middleware would.
func ctxWithAdminSession(r *http.Request) *http.Request {
	data := &session.Data{Admin: true, Email: "admin@example.com"}
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, data))
}

// withURLParam attaches a chi route parameter to a request built
// outside a router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
