package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	speechmodel "github.com/hallikerijaved/CareGpt/internal/model/speech"
	"github.com/hallikerijaved/CareGpt/internal/service/speech"
	"github.com/hallikerijaved/CareGpt/pkg/utils"
)

var errSpeechDisabled = errors.New("speech is not configured: set SPEECH_APP_ID and SPEECH_ACCESS_TOKEN")

func loadSpeech(cmd *cobra.Command) (*speech.Service, error) {
	e, err := loadEnv(cmd)
	if err != nil {
		return nil, err
	}
	if !e.cfg.Speech.Enabled {
		return nil, errSpeechDisabled
	}
	return speech.NewService(e.cfg.Speech.ClientConfig(), e.logger), nil
}

func newASRCmd() *cobra.Command {
	var (
		audioPath string
		format    string
		language  string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "asr",
		Short: "Recognize an audio file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := loadSpeech(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(audioPath)
			if err != nil {
				return fmt.Errorf("read audio: %w", err)
			}
			if format == "" {
				format = utils.InferAudioFormat(audioPath)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			transcript, err := svc.Transcribe(ctx, speechmodel.Audio{
				SessionID: "carectl-" + uuid.NewString(),
				Data:      data,
				Format:    format,
				Language:  language,
			})
			if err != nil {
				return fmt.Errorf("recognize: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, transcript.Text)
			if transcript.Truncated {
				fmt.Fprintf(out, "(audio truncated to %s)\n", svc.Config().CaptureLimit)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&audioPath, "audio", "", "audio file to recognize")
	cmd.Flags().StringVar(&format, "format", "", "audio format, inferred from the file name when empty")
	cmd.Flags().StringVar(&language, "lang", "", "recognition language, defaults to SPEECH_ASR_LANGUAGE")
	cmd.Flags().DurationVar(&timeout, "timeout", 45*time.Second, "request timeout")
	_ = cmd.MarkFlagRequired("audio")
	return cmd
}

func newTTSCmd() *cobra.Command {
	var (
		text     string
		outPath  string
		voice    string
		format   string
		language string
		emotion  string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "tts",
		Short: "Synthesize text to an audio file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(text) == "" {
				return speech.ErrEmptyText
			}
			svc, err := loadSpeech(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			clip, err := svc.Synthesize(ctx, speechmodel.Utterance{
				Text:     text,
				Voice:    voice,
				Format:   format,
				Language: language,
				Emotion:  emotion,
			})
			if err != nil {
				return fmt.Errorf("synthesize: %w", err)
			}
			defer clip.Release()

			if outPath == "" {
				outPath = "tts-" + time.Now().Format("20060102-150405") + "." + clip.Format
			}
			if err := writeClip(clip, outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", clip.Len(), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "text to speak")
	cmd.Flags().StringVar(&outPath, "out", "", "output file, generated from the format when empty")
	cmd.Flags().StringVar(&voice, "voice", "", "voice id, defaults to SPEECH_TTS_VOICE")
	cmd.Flags().StringVar(&format, "format", "", "output format (mp3, wav, pcm, ogg_opus)")
	cmd.Flags().StringVar(&language, "lang", "", "synthesis language, defaults to SPEECH_TTS_LANGUAGE")
	cmd.Flags().StringVar(&emotion, "emotion", "", "emotion for emotion-capable voices, e.g. comfort")
	cmd.Flags().DurationVar(&timeout, "timeout", 45*time.Second, "request timeout")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func writeClip(clip *speech.Clip, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	src, err := clip.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write output: %w", err)
	}
	return dst.Close()
}
