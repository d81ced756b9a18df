package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortText(t *testing.T) {
	full := "[AZURE MONITOR] Fired — CPU High\nSeverity: Sev1 | Signal: Metric\nResource: vm-01\nhttp://x"
	assert.Equal(t, "[AZURE MONITOR] Fired — CPU High — Check Slack for details.", ShortText(full))
	assert.Equal(t, "single — Check Slack for details.", ShortText("single"))
	assert.Equal(t, " — Check Slack for details.", ShortText(""))
}

func TestSlack_PostsTextField(t *testing.T) {
	var got map[string]any
	var method, ctype string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		ctype = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got) //nolint:errcheck
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewSlack(srv.URL, 0)
	require.NoError(t, err)
	require.NoError(t, s.Send(context.Background(), "line1\nline2"))

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/json", ctype)
	assert.Equal(t, "line1\nline2", got["text"])
}

func TestSlack_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	s, err := NewSlack(srv.URL, 0)
	require.NoError(t, err)
	assert.Error(t, s.Send(context.Background(), "x"))
}

func TestSlack_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	s, err := NewSlack(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Error(t, s.Send(context.Background(), "x"))
}

func TestNewSlack_RequiresURL(t *testing.T) {
	_, err := NewSlack("", time.Second)
	assert.Error(t, err)
}

func TestCallMeBot_QueryEncoding(t *testing.T) {
	var rawQuery, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		rawQuery = r.URL.RawQuery
		w.Write([]byte("call queued")) //nolint:errcheck
	}))
	defer srv.Close()

	c, err := NewCallMeBot(CallMeBotConfig{
		APIURL: srv.URL + "/call.php",
		Phone:  "+391234567",
		APIKey: "k&y",
	})
	require.NoError(t, err)
	require.NoError(t, c.Call(context.Background(), "CPU High a+b"))

	assert.Equal(t, http.MethodGet, method)
	assert.Equal(t, "phone=+391234567&text=CPU+High+a+b&lang=en-US&apikey=k%26y", rawQuery)
}

func TestCallMeBot_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad apikey", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewCallMeBot(CallMeBotConfig{APIURL: srv.URL, Phone: "p", APIKey: "k"})
	require.NoError(t, err)

	err = c.Call(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "401"), err.Error())
}

func TestCallMeBot_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewCallMeBot(CallMeBotConfig{APIURL: url, Phone: "p", APIKey: "k"})
	require.NoError(t, err)
	assert.Error(t, c.Call(context.Background(), "x"))
}

func TestNewCallMeBot_Defaults(t *testing.T) {
	c, err := NewCallMeBot(CallMeBotConfig{Phone: "p", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultCallAPIURL, c.cfg.APIURL)
	assert.Equal(t, DefaultCallLang, c.cfg.Lang)
	assert.Equal(t, DefaultCallTimeout, c.client.Timeout)
	assert.True(t, strings.HasPrefix(c.callURL("hi"), DefaultCallAPIURL+"?phone=p&text=hi&lang=en-US&apikey=k"))
}

func TestNewCallMeBot_RequiresCredentials(t *testing.T) {
	_, err := NewCallMeBot(CallMeBotConfig{Phone: "p"})
	assert.Error(t, err)
	_, err = NewCallMeBot(CallMeBotConfig{APIKey: "k"})
	assert.Error(t, err)
}

func TestEncodeQuery_NonASCII(t *testing.T) {
	assert.Equal(t, "text=Fired+%E2%80%94+x", encodeQuery("text", "Fired — x"))
}
