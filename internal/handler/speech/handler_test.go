package speech_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	speechHandler "github.com/hallikerijaved/CareGpt/internal/handler/speech"
	speechmodel "github.com/hallikerijaved/CareGpt/internal/model/speech"
	"github.com/hallikerijaved/CareGpt/internal/service/pipeline"
	sessionService "github.com/hallikerijaved/CareGpt/internal/service/session"
	speechService "github.com/hallikerijaved/CareGpt/internal/service/speech"
)

type fakeSpeech struct {
	mu         sync.Mutex
	text       string
	transErr   error
	synthErr   error
	audio      speechmodel.Audio
	utterances []speechmodel.Utterance
}

func (f *fakeSpeech) Transcribe(_ context.Context, audio speechmodel.Audio) (*speechmodel.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audio = audio
	if f.transErr != nil {
		return nil, f.transErr
	}
	return &speechmodel.Transcript{SessionID: audio.SessionID, Text: f.text, Confidence: 0.9}, nil
}

func (f *fakeSpeech) Synthesize(_ context.Context, utt speechmodel.Utterance) (*speechService.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.utterances = append(f.utterances, utt)
	if f.synthErr != nil {
		return nil, f.synthErr
	}
	clip := speechService.NewClip("mp3", 0)
	_, _ = clip.Write([]byte("spoken:" + utt.Text))
	return clip, nil
}

func (f *fakeSpeech) lastUtterance() speechmodel.Utterance {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.utterances) == 0 {
		return speechmodel.Utterance{}
	}
	return f.utterances[len(f.utterances)-1]
}

type echoResolver struct{}

func (echoResolver) Resolve(_ context.Context, raw string) (pipeline.Resolution, error) {
	return pipeline.Resolution{Query: raw, Tag: "echo", Matched: true, Text: "you said " + raw}, nil
}

func setup(t *testing.T, fake *fakeSpeech) (http.Handler, *sessionService.Service) {
	t.Helper()
	opts := sessionService.Options{}
	var sp speechHandler.Speech
	if fake != nil {
		opts.Recognizer = fake
		opts.Synthesizer = fake
		sp = fake
	}
	sessions := sessionService.NewService(echoResolver{}, opts)

	r := chi.NewRouter()
	speechHandler.New(sp, sessions, nil).RegisterRoutes(r)
	return r, sessions
}

func TestHealth(t *testing.T) {
	h, _ := setup(t, &fakeSpeech{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/speech/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h, _ = setup(t, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/speech/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDisabledSpeechReturns503(t *testing.T) {
	h, _ := setup(t, nil)
	for _, path := range []string{"/speech/transcribe", "/speech/synthesize"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/speech/ws/abc", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func multipartAudio(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("audio-bytes"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestTranscribe(t *testing.T) {
	fake := &fakeSpeech{text: "hello"}
	h, _ := setup(t, fake)

	body, ctype := multipartAudio(t, "note.pcm", map[string]string{"language": "en-GB", "sessionId": "abc"})
	req := httptest.NewRequest(http.MethodPost, "/speech/transcribe", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var transcript speechmodel.Transcript
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transcript))
	assert.Equal(t, "hello", transcript.Text)
	assert.Equal(t, "pcm", fake.audio.Format)
	assert.Equal(t, "en-GB", fake.audio.Language)
	assert.Equal(t, "abc", fake.audio.SessionID)
}

func TestTranscribeUpstreamFailure(t *testing.T) {
	h, _ := setup(t, &fakeSpeech{transErr: errors.New("boom")})

	body, ctype := multipartAudio(t, "note.wav", nil)
	req := httptest.NewRequest(http.MethodPost, "/speech/transcribe", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestTranscribeTimeout(t *testing.T) {
	h, _ := setup(t, &fakeSpeech{transErr: context.DeadlineExceeded})

	body, ctype := multipartAudio(t, "note.wav", nil)
	req := httptest.NewRequest(http.MethodPost, "/speech/transcribe", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestSynthesizeStreamsAudio(t *testing.T) {
	fake := &fakeSpeech{}
	h, _ := setup(t, fake)

	req := httptest.NewRequest(http.MethodPost, "/speech/synthesize", strings.NewReader(`{"text":"hi","emotion":"comfort"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mp3", rec.Header().Get("Content-Type"))
	assert.Equal(t, "spoken:hi", rec.Body.String())
	assert.Equal(t, "comfort", fake.lastUtterance().Emotion)
}

func TestSynthesizeValidation(t *testing.T) {
	h, _ := setup(t, &fakeSpeech{})

	for _, body := range []string{`{}`, `{"text":"hi","speed":5}`, `{"text":"hi","format":"flac"}`, `not json`} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/speech/synthesize", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

type wsMessage struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/speech/ws/" + sessionID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketUnknownSession(t *testing.T) {
	h, _ := setup(t, &fakeSpeech{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/speech/ws/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebSocketTextRoundTrip(t *testing.T) {
	fake := &fakeSpeech{}
	h, sessions := setup(t, fake)
	srv := httptest.NewServer(h)
	defer srv.Close()

	s, err := sessions.Create(context.Background())
	require.NoError(t, err)
	conn := dial(t, srv, s.ID)

	assert.Equal(t, "connected", readMessage(t, conn).Data["type"])

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "text",
		"data": map[string]any{"text": "I feel so sad"},
	}))

	user := readMessage(t, conn)
	assert.Equal(t, "user", user.Data["type"])
	assert.Equal(t, "I feel so sad", user.Data["text"])

	bot := readMessage(t, conn)
	assert.Equal(t, "bot", bot.Data["type"])
	assert.Equal(t, "you said I feel so sad", bot.Data["text"])
	assert.Equal(t, "Sad", bot.Data["suggestedMood"])

	tts := readMessage(t, conn)
	assert.Equal(t, "tts", tts.Data["type"])
	audio, err := base64.StdEncoding.DecodeString(tts.Data["audioData"].(string))
	require.NoError(t, err)
	assert.Equal(t, "spoken:you said I feel so sad", string(audio))

	utt := fake.lastUtterance()
	assert.Equal(t, "comfort", utt.Emotion)
	assert.Equal(t, "en", utt.Language)

	turns, err := sessions.Transcript(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestWebSocketAudioRoundTrip(t *testing.T) {
	fake := &fakeSpeech{text: "hello there"}
	h, sessions := setup(t, fake)
	srv := httptest.NewServer(h)
	defer srv.Close()

	s, err := sessions.Create(context.Background())
	require.NoError(t, err)
	conn := dial(t, srv, s.ID)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "config",
		"data": map[string]any{"ttsEnabled": false},
	}))
	cfg := readMessage(t, conn)
	assert.Equal(t, false, cfg.Data["tts"])

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "audio",
		"data": map[string]any{"audioData": []byte("part1"), "format": "pcm"},
	}))
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "audio",
		"data": map[string]any{"audioData": []byte("part2"), "isFinal": true},
	}))

	asr := readMessage(t, conn)
	assert.Equal(t, "asr", asr.Data["type"])
	assert.Equal(t, "hello there", asr.Data["text"])
	assert.Equal(t, "user", readMessage(t, conn).Data["type"])
	assert.Equal(t, "bot", readMessage(t, conn).Data["type"])

	fake.mu.Lock()
	assert.Equal(t, "part1part2", string(fake.audio.Data))
	assert.Equal(t, "pcm", fake.audio.Format)
	assert.Empty(t, fake.utterances)
	fake.mu.Unlock()
}

func TestWebSocketAudioUsesChannelVoice(t *testing.T) {
	fake := &fakeSpeech{text: "hello there"}
	h, sessions := setup(t, fake)
	srv := httptest.NewServer(h)
	defer srv.Close()

	s, err := sessions.Create(context.Background())
	require.NoError(t, err)
	conn := dial(t, srv, s.ID)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "config",
		"data": map[string]any{"language": "en-US", "voice": "en_female_sarah"},
	}))
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "audio",
		"data": map[string]any{"audioData": []byte("clip"), "isFinal": true},
	}))

	assert.Equal(t, "asr", readMessage(t, conn).Data["type"])
	assert.Equal(t, "user", readMessage(t, conn).Data["type"])
	assert.Equal(t, "bot", readMessage(t, conn).Data["type"])
	assert.Equal(t, "tts", readMessage(t, conn).Data["type"])

	utt := fake.lastUtterance()
	assert.Equal(t, "en_female_sarah", utt.Voice)
	assert.Equal(t, "en", utt.Language)
	fake.mu.Lock()
	assert.Equal(t, "en-US", fake.audio.Language)
	fake.mu.Unlock()
}

func TestWebSocketSpeechNotUnderstood(t *testing.T) {
	h, sessions := setup(t, &fakeSpeech{text: "  "})
	srv := httptest.NewServer(h)
	defer srv.Close()

	s, err := sessions.Create(context.Background())
	require.NoError(t, err)
	conn := dial(t, srv, s.ID)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "audio",
		"data": map[string]any{"audioData": []byte("noise"), "isFinal": true},
	}))

	msg := readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, sessionService.SpeechNotUnderstood, msg.Data["message"])
}
