//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

const answerPage = `<html><body>
<div class="answer"><div class="js-post-body">
<p>np.prod is what you're looking for.</p>
<pre><code>np.prod(a, axis=1)</code></pre>
</div></div>
</body></html>`

// questionSite serves /search/advanced plus one answer page per question.
func questionSite(t *testing.T, questions int) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search/advanced":
			items := make([]string, 0, questions)
			for i := 1; i <= questions; i++ {
				items = append(items, fmt.Sprintf(`{"title":"row product %d","creation_date":1600000000,"score":%d,"tags":["python","numpy"],"link":"%s/questions/%d"}`, i, i, srv.URL, i))
			}
			fmt.Fprintf(w, `{"items":[%s],"has_more":false}`, strings.Join(items, ","))
		case strings.HasPrefix(r.URL.Path, "/questions/"):
			fmt.Fprint(w, answerPage)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type pairCompleter struct{ calls int }

func (p *pairCompleter) Complete(_ context.Context, msgs []openai.ChatCompletionMessage) (string, error) {
	p.calls++
	if !strings.Contains(msgs[1].Content, "np.prod") {
		return "", fmt.Errorf("answers missing from prompt")
	}
	return `api1 = "numpy.prod"` + "\n" + `api2 = "numpy.multiply.reduce"`, nil
}
