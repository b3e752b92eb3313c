package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/bilirec/internal/adapter"
	"github.com/mmcdole/bilirec/internal/domain"
)

func navServer(t *testing.T, wantCookie string) *adapter.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/x/web-interface/nav", r.URL.Path)
		if !strings.Contains(r.Header.Get("Cookie"), "SESSDATA="+wantCookie) {
			fmt.Fprint(w, `{"code":-101,"message":"账号未登录","data":{"isLogin":false}}`)
			return
		}
		fmt.Fprint(w, `{"code":0,"data":{"isLogin":true,"mid":42,"uname":"tester"}}`)
	}))
	t.Cleanup(srv.Close)

	cfg := adapter.DefaultConfig()
	cfg.API.WebURL = srv.URL
	cfg.API.AppURL = srv.URL
	cfg.API.LiveURL = srv.URL
	return cfg
}

func TestAuthFlow_VerifiesCookies(t *testing.T) {
	cfg := navServer(t, "good")
	var out bytes.Buffer
	flow := NewAuthFlowIO(strings.NewReader("good\njct123\n"), &out, adapter.NullLogger())

	res, err := flow.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "good", res.SessData)
	assert.Equal(t, "jct123", res.BiliJct)
	assert.Equal(t, int64(42), res.Account.Mid)
	assert.Contains(t, out.String(), "Logged in as tester (42)")
	assert.Empty(t, cfg.Auth.SessData, "config is left untouched")
}

func TestAuthFlow_RejectsLoggedOutSession(t *testing.T) {
	cfg := navServer(t, "good")
	flow := NewAuthFlowIO(strings.NewReader("expired\n\n"), &bytes.Buffer{}, adapter.NullLogger())

	_, err := flow.Run(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestAuthFlow_EmptyCookie(t *testing.T) {
	cfg := navServer(t, "good")
	flow := NewAuthFlowIO(strings.NewReader(""), &bytes.Buffer{}, adapter.NullLogger())

	_, err := flow.Run(context.Background(), cfg)
	assert.ErrorContains(t, err, "SESSDATA cannot be empty")
}
