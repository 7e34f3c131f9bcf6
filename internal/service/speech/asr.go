package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/hallikerijaved/CareGpt/internal/model/speech"
)

const (
	// 200 ms of 16 kHz 16 bit mono PCM.
	asrPacketBytes    = 6400
	asrPacketInterval = 200 * time.Millisecond
	asrSuccessCode    = 20000000
)

// ASRClient is the Volcengine bigmodel recognition client.
type ASRClient struct {
	config         *speech.Config
	dialer         *websocket.Dialer
	logger         *slog.Logger
	packetInterval time.Duration
}

// NewASRClient creates a recognition client.
func NewASRClient(config *speech.Config, logger *slog.Logger) *ASRClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &ASRClient{
		config:         config,
		dialer:         &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
		logger:         logger,
		packetInterval: asrPacketInterval,
	}
}

type asrRequest struct {
	User struct {
		UID string `json:"uid,omitempty"`
	} `json:"user"`
	Audio struct {
		Language string `json:"language,omitempty"`
		Format   string `json:"format"`
		Codec    string `json:"codec,omitempty"`
		Rate     int    `json:"rate,omitempty"`
		Bits     int    `json:"bits,omitempty"`
		Channel  int    `json:"channel,omitempty"`
	} `json:"audio"`
	Request struct {
		ModelName      string `json:"model_name"`
		EnableITN      bool   `json:"enable_itn,omitempty"`
		EnablePunc     bool   `json:"enable_punc,omitempty"`
		ShowUtterances bool   `json:"show_utterances,omitempty"`
		ResultType     string `json:"result_type,omitempty"`
		EndWindowSize  int    `json:"end_window_size,omitempty"`
	} `json:"request"`
}

type asrUtterance struct {
	Text      string `json:"text"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Definite  bool   `json:"definite"`
}

type asrServerMessage struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Result   struct {
		Text       string         `json:"text"`
		Utterances []asrUtterance `json:"utterances,omitempty"`
	} `json:"result"`
	AudioInfo struct {
		Duration int64 `json:"duration"`
	} `json:"audio_info"`
}

// Transcribe sends the clip, capped at the capture limit, and waits for the
// final transcript. An empty Text means nothing was recognized.
func (c *ASRClient) Transcribe(ctx context.Context, audio speech.Audio) (*speech.Transcript, error) {
	if len(audio.Data) == 0 {
		return nil, ErrEmptyAudio
	}

	data, truncated := c.capture(audio)
	if truncated {
		c.logger.Debug("audio truncated to capture limit",
			"session_id", audio.SessionID, "bytes", len(audio.Data), "limit", len(data))
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	resourceID := "volc.bigasr.sauc.duration"
	if c.config.ConcurrentMode {
		resourceID = "volc.bigasr.sauc.concurrent"
	}
	header, err := authHeader(c.config, resourceID, uuid.NewString())
	if err != nil {
		return nil, err
	}

	endpoint := c.config.ASREndpoint
	if endpoint == "" {
		endpoint = speech.DefaultASREndpoint
	}

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ASR websocket: %w", err)
	}
	defer conn.Close()
	if resp != nil {
		if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
			c.logger.Debug("asr connected", "logid", logid)
		}
	}

	payload, err := json.Marshal(c.buildRequest(audio))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ASR request: %w", err)
	}
	compressed, err := compress(payload, compressGzip)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, encodeFrame(newClientRequest(compressed, compressGzip))); err != nil {
		return nil, fmt.Errorf("failed to send ASR request: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	// Unblocks ReadMessage when the call is cancelled or times out.
	stop := context.AfterFunc(gctx, func() { _ = conn.Close() })
	defer stop()

	g.Go(func() error {
		return c.sendAudio(gctx, conn, data)
	})

	var transcript *speech.Transcript
	g.Go(func() error {
		t, err := c.receive(conn, audio.SessionID)
		transcript = t
		return err
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ASR cancelled: %w", ctxErr)
		}
		return nil, err
	}

	transcript.Truncated = truncated
	return transcript, nil
}

// capture trims raw PCM or WAV input to the configured capture window.
func (c *ASRClient) capture(audio speech.Audio) ([]byte, bool) {
	limit := c.config.CaptureBytes()
	if limit <= 0 || len(audio.Data) <= limit {
		return audio.Data, false
	}
	switch strings.ToLower(audio.Format) {
	case "", "pcm", "wav":
		return audio.Data[:limit], true
	}
	return audio.Data, false
}

func (c *ASRClient) buildRequest(audio speech.Audio) *asrRequest {
	req := &asrRequest{}
	req.User.UID = audio.SessionID

	req.Audio.Format = firstNonEmpty(audio.Format, "wav")
	req.Audio.Language = firstNonEmpty(audio.Language, c.config.ASRLanguage, "en-US")
	req.Audio.Codec = "raw"
	req.Audio.Rate = speech.SampleRate
	req.Audio.Bits = 16
	req.Audio.Channel = 1

	req.Request.ModelName = firstNonEmpty(c.config.ASRModel, "bigmodel")
	req.Request.EnableITN = true
	req.Request.EnablePunc = true
	req.Request.ShowUtterances = true
	req.Request.ResultType = "full"
	req.Request.EndWindowSize = 800
	return req
}

// sendAudio streams the clip in 200 ms packets, paced like live capture.
// Sequence 1 belongs to the full client request.
func (c *ASRClient) sendAudio(ctx context.Context, conn *websocket.Conn, data []byte) error {
	seq := int32(2)
	for start := 0; start < len(data); start += asrPacketBytes {
		end := min(start+asrPacketBytes, len(data))
		last := end == len(data)

		chunk, err := compress(data[start:end], compressGzip)
		if err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, encodeFrame(newAudioRequest(chunk, seq, last, compressGzip))); err != nil {
			return fmt.Errorf("failed to send audio chunk: %w", err)
		}
		seq++

		if last {
			return nil
		}
		if c.packetInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.packetInterval):
			}
		}
	}
	return nil
}

func (c *ASRClient) receive(conn *websocket.Conn, sessionID string) (*speech.Transcript, error) {
	var (
		text     string
		duration int64
	)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read ASR response: %w", err)
		}

		f, err := decodeFrame(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode ASR frame: %w", err)
		}

		switch f.Type {
		case errorMessage:
			payload, _ := f.payload()
			return nil, fmt.Errorf("ASR error %d: %s", f.ErrorCode, string(payload))

		case fullServerResponse:
			payload, err := f.payload()
			if err != nil {
				return nil, fmt.Errorf("failed to decompress ASR payload: %w", err)
			}

			var msg asrServerMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				c.logger.Warn("asr response not understood", "error", err)
				continue
			}
			if msg.Code != 0 && msg.Code != asrSuccessCode {
				return nil, fmt.Errorf("ASR API error %d: %s", msg.Code, msg.Message)
			}

			candidate := msg.Result.Text
			if candidate == "" {
				candidate = joinUtterances(msg.Result.Utterances)
			}
			if candidate != "" {
				text = candidate
			}
			if msg.AudioInfo.Duration > 0 {
				duration = msg.AudioInfo.Duration
			}

			if f.isLast() || msg.Sequence < 0 {
				text = strings.TrimSpace(text)
				if text == "" {
					c.logger.Info("empty transcript", "session_id", sessionID)
				}
				return &speech.Transcript{
					SessionID:  sessionID,
					Text:       text,
					Confidence: estimateConfidence(text),
					Duration:   duration,
					RequestID:  sessionID,
					CreatedAt:  time.Now(),
				}, nil
			}
		}
	}
}

func joinUtterances(utterances []asrUtterance) string {
	parts := make([]string, 0, len(utterances))
	for _, u := range utterances {
		if t := strings.TrimSpace(u.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func estimateConfidence(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return 0.95
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// IsTimeout reports whether err came from the call deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
