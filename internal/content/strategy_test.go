package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
	"github.com/sutinse/ai-analysis-api/internal/extractor"
	"github.com/sutinse/ai-analysis-api/pkg/models"
	"github.com/sutinse/ai-analysis-api/pkg/validation"
)

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeExtractor) Name() string { return "fake" }

type fakeExtractorFactory struct {
	ext   *fakeExtractor
	calls int
}

func (f *fakeExtractorFactory) CreateExtractor(filename string) (extractor.Extractor, error) {
	f.calls++
	return f.ext, nil
}

type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) FetchPage(_ context.Context, _ string) (*goquery.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(f.html))
}

func fileRequest(t *testing.T, name string, size int64) *models.AnalysisRequest {
	t.Helper()
	req, err := models.NewAnalysisRequest(models.RequestParams{
		File:               &models.UploadedFile{Filename: name, Content: []byte("data"), Size: size},
		NamedInstructionID: "SystemMessage1",
	})
	require.NoError(t, err)
	return req
}

func webRequest(t *testing.T) *models.AnalysisRequest {
	t.Helper()
	req, err := models.NewAnalysisRequest(models.RequestParams{
		WebURL:             "https://example.com/page",
		NamedInstructionID: "SystemMessage1",
	})
	require.NoError(t, err)
	return req
}

func TestTextStrategyReturnsTextVerbatim(t *testing.T) {
	req, err := models.NewAnalysisRequest(models.RequestParams{Text: "  keep  me  ", NamedInstructionID: "x"})
	require.NoError(t, err)

	got, err := NewTextStrategy().Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "  keep  me  ", got)
}

func TestFileStrategyRejectsBeforeExtraction(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
	}{
		{"disallowed extension", "malware.exe", 10},
		{"too large", "huge.pdf", 60_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &fakeExtractor{text: "never"}
			factory := &fakeExtractorFactory{ext: ext}
			s := NewFileStrategy(validation.NewFileValidator(), factory)

			_, err := s.Resolve(context.Background(), fileRequest(t, tt.filename, tt.size))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeContentRejected))
			assert.Zero(t, factory.calls)
			assert.Zero(t, ext.calls, "extractor must not be invoked for rejected uploads")
		})
	}
}

func TestFileStrategyAcceptsUpperCaseExtension(t *testing.T) {
	ext := &fakeExtractor{text: "slide text"}
	s := NewFileStrategy(validation.NewFileValidator(), &fakeExtractorFactory{ext: ext})

	got, err := s.Resolve(context.Background(), fileRequest(t, "DECK.PPTX", 1024))
	require.NoError(t, err)
	assert.Equal(t, "slide text", got)
	assert.Equal(t, 1, ext.calls)
}

func TestFileStrategyWrapsExtractionFailure(t *testing.T) {
	ext := &fakeExtractor{err: extractor.ErrCorruptDocument}
	s := NewFileStrategy(validation.NewFileValidator(), &fakeExtractorFactory{ext: ext})

	_, err := s.Resolve(context.Background(), fileRequest(t, "broken.pdf", 100))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExtractionFailed))
	assert.True(t, errors.Is(err, extractor.ErrCorruptDocument))
}

func TestWebStrategyStripsNonContent(t *testing.T) {
	fetcher := &fakeFetcher{html: `<html><head><title>T</title><style>p{}</style></head><body>
		<header>Site header</header><nav>Menu</nav>
		<main><h1>Otsikko</h1>
		<p>First   line</p>
		<script>alert(1)</script><noscript>enable js</noscript>
		<p>Second</p></main>
		<aside>ads</aside><footer>Copyright</footer>
	</body></html>`}
	s := NewWebStrategy(fetcher, validation.NewURLValidator(), 0)

	got, err := s.Resolve(context.Background(), webRequest(t))
	require.NoError(t, err)
	assert.Equal(t, "Otsikko First line Second", got)
}

func TestWebStrategyTruncatesWithMarker(t *testing.T) {
	fetcher := &fakeFetcher{html: "<html><body><p>" + strings.Repeat("a", 50) + "</p></body></html>"}
	s := NewWebStrategy(fetcher, validation.NewURLValidator(), 20)

	got, err := s.Resolve(context.Background(), webRequest(t))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 20)+TruncationMarker, got)
}

func TestWebStrategyFetchFailure(t *testing.T) {
	s := NewWebStrategy(&fakeFetcher{err: errors.New("dial tcp: no such host")}, validation.NewURLValidator(), 0)

	_, err := s.Resolve(context.Background(), webRequest(t))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeFetchFailed))
	assert.Equal(t, 502, apperrors.GetStatusCode(err))
}

func TestWebStrategyHonoursHostAllowList(t *testing.T) {
	fetcher := &fakeFetcher{html: "<html><body>never</body></html>"}
	s := NewWebStrategy(fetcher,
		validation.NewURLValidatorWithOptions(validation.DefaultAllowedSchemes, []string{"docs.example.com"}), 0)

	_, err := s.Resolve(context.Background(), webRequest(t))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Zero(t, fetcher.calls, "rejected URLs are never fetched")
}

func TestTruncateCountsCharacters(t *testing.T) {
	got, cut := Truncate("ääää", 4)
	assert.False(t, cut)
	assert.Equal(t, "ääää", got)

	got, cut = Truncate("äääää", 4)
	assert.True(t, cut)
	assert.Equal(t, "ääää"+TruncationMarker, got)
}

func TestResolverDispatchesByInputKind(t *testing.T) {
	ext := &fakeExtractor{text: "from file"}
	fetcher := &fakeFetcher{html: "<html><body>from web</body></html>"}
	r := NewResolver(
		NewTextStrategy(),
		NewFileStrategy(validation.NewFileValidator(), &fakeExtractorFactory{ext: ext}),
		NewWebStrategy(fetcher, validation.NewURLValidator(), 0),
	)

	textReq, err := models.NewAnalysisRequest(models.RequestParams{Text: "from text", NamedInstructionID: "x"})
	require.NoError(t, err)

	for _, tc := range []struct {
		req  *models.AnalysisRequest
		want string
	}{
		{textReq, "from text"},
		{fileRequest(t, "a.txt", 4), "from file"},
		{webRequest(t), "from web"},
	} {
		got, err := r.Resolve(context.Background(), tc.req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 1, ext.calls)
}
