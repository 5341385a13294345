package manifest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"site-cleaner/core/cleaner"
	"site-cleaner/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func relPaths(files []cleaner.SiteFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, string(f.(cleaner.RelativeFile)))
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want []string
	}{
		{"JSONList", "m.json", `["index.html", "css/site.css"]`, []string{"index.html", "css/site.css"}},
		{"JSONDocument", "m.json", `{"files": ["a.html"]}`, []string{"a.html"}},
		{"YAMLList", "m.yml", "- index.html\n- blog/post.html\n", []string{"index.html", "blog/post.html"}},
		{"YAMLDocument", "m.yaml", "files:\n  - feed.xml\n", []string{"feed.xml"}},
		{"YAMLEmpty", "m.yaml", "", nil},
		{"TOML", "m.toml", "files = [\"a.html\", \"b/c.html\"]\n", []string{"a.html", "b/c.html"}},
		{"Text", "MANIFEST", "# generated\nindex.html\n\n  about/index.html  \n", []string{"index.html", "about/index.html"}},
		{"UpperCaseExtension", "M.JSON", `["x"]`, []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.file, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, name := range []string{"m.json", "m.yaml", "m.toml"} {
		_, err := Parse(name, []byte("[{ not valid"))
		assert.Error(t, err, name)
	}
}

func TestCleanPath(t *testing.T) {
	valid := map[string]string{
		"index.html":         "index.html",
		"a//b/./c.html":      "a/b/c.html",
		"a/../b.html":        "b.html",
		`win\style\path.css`: "win/style/path.css",
		" padded.txt ":       "padded.txt",
	}
	for in, want := range valid {
		got, err := CleanPath(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "/etc/passwd", ".", "..", "../outside", "a/../../b", "./"} {
		_, err := CleanPath(in)
		assert.ErrorIs(t, err, ErrInvalidPath, in)
		assert.Contains(t, err.Error(), in)
	}
}

func TestToSiteFiles_Dedup(t *testing.T) {
	files, err := toSiteFiles([]string{"a.html", "./a.html", "b.html"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "b.html"}, relPaths(files))
}

func TestRegistry(t *testing.T) {
	fsys := afero.NewMemMapFs()
	reg := NewRegistry(NewFileSource(fsys, "m.txt"), NewObjectSource(nil, "b", "m.json"))

	assert.Equal(t, []string{"file", "object"}, reg.Names())

	src, err := reg.Get("file")
	require.NoError(t, err)
	assert.Equal(t, "file", src.Name())

	_, err = reg.Get("ftp")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestFileSource(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/work/site.json", []byte(`{"files":["index.html","posts/a.html"]}`), 0o644))

	files, err := NewFileSource(fsys, "/work/site.json").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "posts/a.html"}, relPaths(files))

	t.Run("Missing", func(t *testing.T) {
		_, err := NewFileSource(fsys, "/work/none.json").Load(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "/work/none.json")
	})

	t.Run("NotConfigured", func(t *testing.T) {
		_, err := NewFileSource(fsys, "").Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("EscapingEntry", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fsys, "/work/bad.txt", []byte("ok.html\n../../etc/passwd\n"), 0o644))
		_, err := NewFileSource(fsys, "/work/bad.txt").Load(context.Background())
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestListingSource(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "site").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "site", minio.ListObjectsOptions{Prefix: "public/", Recursive: true}).
		Return(mocks.Objects("public/index.html", "public/assets/", "public/assets/app.js", "public/"))

	files, err := NewListingSource(mockClient, "site", "/public").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "assets/app.js"}, relPaths(files))
	mockClient.AssertExpectations(t)
}

func TestListingSource_Errors(t *testing.T) {
	t.Run("MissingBucket", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "site").Return(false, nil)

		_, err := NewListingSource(mockClient, "site", "").Load(context.Background())
		assert.EqualError(t, err, "bucket site does not exist")
	})

	t.Run("BucketCheckFails", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "site").Return(false, errors.New("denied"))

		_, err := NewListingSource(mockClient, "site", "").Load(context.Background())
		assert.ErrorContains(t, err, "denied")
	})

	t.Run("ListError", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "site").Return(true, nil)
		ch := make(chan minio.ObjectInfo, 1)
		ch <- minio.ObjectInfo{Err: errors.New("list failed")}
		close(ch)
		mockClient.On("ListObjects", mock.Anything, "site", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

		_, err := NewListingSource(mockClient, "site", "").Load(context.Background())
		assert.ErrorContains(t, err, "list failed")
	})
}

func TestObjectSource(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "site").Return(true, nil)
	mockClient.On("GetObject", mock.Anything, "site", "manifests/blog.yaml", mock.Anything).
		Return(io.NopCloser(strings.NewReader("files:\n  - index.html\n  - feed.xml\n")), nil)

	files, err := NewObjectSource(mockClient, "site", "manifests/blog.yaml").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "feed.xml"}, relPaths(files))

	t.Run("GetFails", func(t *testing.T) {
		failing := new(mocks.Client)
		failing.On("BucketExists", mock.Anything, "site").Return(true, nil)
		failing.On("GetObject", mock.Anything, "site", "m.json", mock.Anything).Return(nil, errors.New("no such key"))

		_, err := NewObjectSource(failing, "site", "m.json").Load(context.Background())
		assert.ErrorContains(t, err, "no such key")
	})
}

func TestDatabaseSource(t *testing.T) {
	db, sqlMock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"path"}).
		AddRow("about/index.html").
		AddRow("index.html")
	sqlMock.ExpectQuery("SELECT `path` FROM `site_files` WHERE site = \\?").
		WithArgs("blog").
		WillReturnRows(rows)

	files, err := NewDatabaseSource(db, "blog").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"about/index.html", "index.html"}, relPaths(files))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestDatabaseSource_Errors(t *testing.T) {
	_, err := NewDatabaseSource(nil, "blog").Load(context.Background())
	assert.Error(t, err)

	db, sqlMock := setupMockDB(t)
	sqlMock.ExpectQuery(".*").WillReturnError(errors.New("connection lost"))

	_, err = NewDatabaseSource(db, "blog").Load(context.Background())
	assert.ErrorContains(t, err, "connection lost")
}

// countingSource counts loads and can block until released.
type countingSource struct {
	name    string
	loads   atomic.Int32
	release chan struct{}
	err     error
}

func (s *countingSource) Name() string { return s.name }

func (s *countingSource) Load(ctx context.Context) ([]cleaner.SiteFile, error) {
	s.loads.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return []cleaner.SiteFile{cleaner.RelativeFile("index.html")}, nil
}

func TestCache_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }
	src := &countingSource{name: "file"}

	for i := 0; i < 3; i++ {
		files, err := c.Load(context.Background(), src)
		require.NoError(t, err)
		assert.Len(t, files, 1)
	}
	assert.Equal(t, int32(1), src.loads.Load())

	now = now.Add(2 * time.Minute)
	_, err := c.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.loads.Load())

	c.Invalidate("file")
	_, err = c.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int32(3), src.loads.Load())
}

func TestCache_ZeroTTL(t *testing.T) {
	c := NewCache(0)
	src := &countingSource{name: "file"}

	_, _ = c.Load(context.Background(), src)
	_, _ = c.Load(context.Background(), src)
	assert.Equal(t, int32(2), src.loads.Load())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := NewCache(time.Hour)
	src := &countingSource{name: "db", err: errors.New("boom")}

	_, err := c.Load(context.Background(), src)
	assert.EqualError(t, err, "boom")
	_, err = c.Load(context.Background(), src)
	assert.Error(t, err)
	assert.Equal(t, int32(2), src.loads.Load())
}

func TestCache_Singleflight(t *testing.T) {
	c := NewCache(time.Hour)
	src := &countingSource{name: "storage", release: make(chan struct{})}

	const callers = 8
	var started, wg sync.WaitGroup
	started.Add(callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			started.Done()
			files, err := c.Load(context.Background(), src)
			assert.NoError(t, err)
			assert.Len(t, files, 1)
		}()
	}

	started.Wait()
	// Give the goroutines time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.loads.Load())
}
