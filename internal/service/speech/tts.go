package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hallikerijaved/CareGpt/internal/model/speech"
)

const ttsSuccessCode = 3000

// TTSClient is the Volcengine unidirectional streaming synthesis client.
type TTSClient struct {
	config *speech.Config
	dialer *websocket.Dialer
	logger *slog.Logger
}

// NewTTSClient creates a synthesis client.
func NewTTSClient(config *speech.Config, logger *slog.Logger) *TTSClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &TTSClient{
		config: config,
		dialer: &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
		logger: logger,
	}
}

type ttsRequest struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	ReqParams struct {
		Speaker     string         `json:"speaker"`
		Text        string         `json:"text"`
		AudioParams ttsAudioParams `json:"audio_params"`
		Additions   string         `json:"additions,omitempty"`
		Language    string         `json:"language,omitempty"`
	} `json:"req_params"`
}

type ttsAudioParams struct {
	Format       string  `json:"format"`
	SampleRate   int     `json:"sample_rate"`
	SpeedRatio   float32 `json:"speed_ratio,omitempty"`
	VolumeRatio  float32 `json:"volume_ratio,omitempty"`
	Emotion      string  `json:"emotion,omitempty"`
	EmotionScale float32 `json:"emotion_scale,omitempty"`
}

type ttsServerMessage struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration string `json:"duration,omitempty"`
	} `json:"addition"`
}

// Synthesize speaks utt. Voices are tried in order, and for each voice every
// compatible resource id, until the service accepts the pairing.
func (c *TTSClient) Synthesize(ctx context.Context, utt speech.Utterance) (*Clip, error) {
	if strings.TrimSpace(utt.Text) == "" {
		return nil, ErrEmptyText
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	format := strings.ToLower(firstNonEmpty(utt.Format, "mp3"))
	if format == "wav" {
		format = "mp3"
	}

	var lastMismatch error
	for _, speaker := range speakerCandidates(utt.Voice, c.config.TTSVoice) {
		for _, resourceID := range resourceCandidates(speaker) {
			clip, err := c.synthesizeWith(ctx, utt, speaker, resourceID, format)
			if err == nil {
				return clip, nil
			}
			if !isResourceMismatch(err) {
				return nil, err
			}
			c.logger.Debug("tts resource mismatch", "voice", speaker, "resource", resourceID, "error", err)
			lastMismatch = err
		}
	}

	if lastMismatch != nil {
		return nil, lastMismatch
	}
	return nil, fmt.Errorf("TTS synthesis failed: no usable voice")
}

func (c *TTSClient) synthesizeWith(ctx context.Context, utt speech.Utterance, speaker, resourceID, format string) (*Clip, error) {
	connectID := uuid.NewString()
	header, err := authHeader(c.config, resourceID, connectID)
	if err != nil {
		return nil, err
	}

	endpoint := c.config.TTSEndpoint
	if endpoint == "" {
		endpoint = speech.DefaultTTSEndpoint
	}

	conn, _, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to TTS websocket: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	payload, err := json.Marshal(c.buildRequest(utt, speaker, format))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TTS request: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, encodeFrame(newClientRequest(payload, compressNone))); err != nil {
		return nil, fmt.Errorf("failed to send TTS request: %w", err)
	}

	clip := NewClip(format, c.config.SpoolBytes)
	clip.RequestID = connectID
	if err := c.receive(conn, clip); err != nil {
		clip.Release()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("TTS cancelled: %w", ctxErr)
		}
		return nil, err
	}
	return clip, nil
}

func (c *TTSClient) receive(conn *websocket.Conn, clip *Clip) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read TTS response: %w", err)
		}

		f, err := decodeFrame(data)
		if err != nil {
			return fmt.Errorf("failed to decode TTS frame: %w", err)
		}

		switch f.Type {
		case errorMessage:
			payload, _ := f.payload()
			return fmt.Errorf("TTS error %d: %s", f.ErrorCode, string(payload))

		case audioOnlyResponse:
			chunk, err := f.payload()
			if err != nil {
				return fmt.Errorf("failed to decompress audio chunk: %w", err)
			}
			if _, err := clip.Write(chunk); err != nil {
				return err
			}

		case fullServerResponse:
			payload, err := f.payload()
			if err != nil {
				return fmt.Errorf("failed to decompress TTS payload: %w", err)
			}

			var msg ttsServerMessage
			if len(payload) > 0 {
				if err := json.Unmarshal(payload, &msg); err != nil {
					c.logger.Warn("tts response not understood", "error", err)
				} else {
					if msg.Code != 0 && msg.Code != ttsSuccessCode {
						return fmt.Errorf("TTS API error %d: %s", msg.Code, msg.Message)
					}
					if msg.ReqID != "" {
						clip.RequestID = msg.ReqID
					}
					if ms, err := strconv.ParseInt(msg.Addition.Duration, 10, 64); err == nil {
						clip.Duration = ms
					}
					if msg.Data != "" {
						chunk, err := base64.StdEncoding.DecodeString(msg.Data)
						if err != nil {
							return fmt.Errorf("failed to decode base64 audio chunk: %w", err)
						}
						if _, err := clip.Write(chunk); err != nil {
							return err
						}
					}
				}
			}

			finished := (f.hasEvent() && f.Event == eventSessionFinished) || f.isLast() || msg.Sequence < 0
			if finished {
				if clip.Len() == 0 {
					return fmt.Errorf("TTS audio is empty")
				}
				return nil
			}
		}
	}
}

func (c *TTSClient) buildRequest(utt speech.Utterance, speaker, format string) *ttsRequest {
	req := &ttsRequest{}
	req.User.UID = firstNonEmpty(utt.SessionID, uuid.NewString())
	req.ReqParams.Speaker = speaker
	req.ReqParams.Text = utt.Text
	req.ReqParams.Language = firstNonEmpty(utt.Language, c.config.TTSLanguage, "en")
	req.ReqParams.Additions = `{"disable_markdown_filter":false}`

	params := &req.ReqParams.AudioParams
	params.Format = format
	params.SampleRate = 24000

	speed := utt.Speed
	if speed <= 0 {
		speed = c.config.TTSSpeed
	}
	if speed > 0 && speed != 1 {
		params.SpeedRatio = speed
	}

	volume := utt.Volume
	if volume <= 0 {
		volume = c.config.TTSVolume
	}
	if volume > 0 && volume != 1 {
		params.VolumeRatio = volume
	}

	if utt.Emotion != "" && SupportsEmotion(speaker) {
		params.Emotion = utt.Emotion
		params.EmotionScale = utt.EmotionScale
	}
	return req
}

func resourceCandidates(voice string) []string {
	const (
		defaultResource = "volc.service_type.10029"
		megaResource    = "volc.megatts.default"
		seedResource    = "seed-tts-2.0"
	)

	voice = strings.TrimSpace(voice)
	if strings.HasPrefix(voice, "S_") {
		return []string{megaResource}
	}

	normalized := strings.ToLower(voice)
	for _, hint := range []string{"bigtts", "seed", "megatts", "jupiter", "mars", "uranus", "venus"} {
		if strings.Contains(normalized, hint) {
			return []string{seedResource, defaultResource}
		}
	}
	return []string{defaultResource, seedResource}
}

var voiceAliases = map[string]string{
	"en_default": "en_female_amy_jupiter_bigtts",
	"calm":       "en_female_skye_emo_v2_mars_bigtts",
	"warm":       "en_male_glen_emo_v2_mars_bigtts",
}

// speakerCandidates lists the requested voice then the configured default,
// resolving aliases and dropping duplicates.
func speakerCandidates(requested, fallback string) []string {
	var candidates []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if mapped, ok := voiceAliases[strings.ToLower(s)]; ok {
			s = mapped
		}
		for _, existing := range candidates {
			if strings.EqualFold(existing, s) {
				return
			}
		}
		candidates = append(candidates, s)
	}

	add(requested)
	add(fallback)
	if len(candidates) == 0 {
		return []string{voiceAliases["en_default"]}
	}
	return candidates
}

func isResourceMismatch(err error) bool {
	return err != nil && strings.Contains(err.Error(), "resource ID is mismatched with speaker related resource")
}
