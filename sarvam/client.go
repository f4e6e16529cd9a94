// Package sarvam talks to the Sarvam AI speech and translation API.
// Without an API key it runs in mock mode and answers from canned data.
package sarvam

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.sarvam.ai/v1"

type Config struct {
	APIKey          string
	BaseURL         string
	Timeout         time.Duration
	DefaultLanguage string
}

type Client struct {
	apiKey          string
	baseURL         string
	defaultLanguage string
	client          *http.Client
}

// Speech is synthesized audio.
type Speech struct {
	Audio    []byte
	MimeType string
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	lang, ok := Canonical(cfg.DefaultLanguage)
	if !ok {
		lang = DefaultLanguage
	}
	return &Client{
		apiKey:          cfg.APIKey,
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		defaultLanguage: lang,
		client:          &http.Client{Timeout: cfg.Timeout},
	}
}

// Mock reports whether the client answers from canned data.
func (c *Client) Mock() bool {
	return c.apiKey == ""
}

func (c *Client) DefaultLanguage() string {
	return c.defaultLanguage
}

type detectRequest struct {
	Audio string `json:"audio"`
}

type detectResponse struct {
	Language string `json:"language"`
}

// DetectLanguage never fails: any error or unsupported answer yields
// English.
func (c *Client) DetectLanguage(ctx context.Context, audio []byte) string {
	if c.Mock() {
		return c.defaultLanguage
	}

	var out detectResponse
	if err := c.postJSON(ctx, "/language-detection", detectRequest{Audio: base64.StdEncoding.EncodeToString(audio)}, &out); err != nil {
		slog.Warn("Language detection failed, defaulting to English", "error", err)
		return DefaultLanguage
	}
	lang, ok := Canonical(out.Language)
	if !ok {
		slog.Warn("Unsupported language detected, defaulting to English", "language", out.Language)
		return DefaultLanguage
	}
	return lang
}

type transcribeRequest struct {
	Audio    string `json:"audio"`
	Language string `json:"language"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

func (c *Client) Transcribe(ctx context.Context, audio []byte, lang string) (string, error) {
	lang = Lookup(lang).Code
	if c.Mock() {
		return mockTranscript(audio, lang), nil
	}

	var out transcribeResponse
	req := transcribeRequest{Audio: base64.StdEncoding.EncodeToString(audio), Language: lang}
	if err := c.postJSON(ctx, "/speech-to-text", req, &out); err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", errors.New("no transcription result returned")
	}
	return out.Text, nil
}

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Translate returns text unchanged when source and target agree.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	source, target = Lookup(source).Code, Lookup(target).Code
	if source == target || strings.TrimSpace(text) == "" {
		return text, nil
	}
	if c.Mock() {
		return mockTranslate(text, target), nil
	}

	var out translateResponse
	req := translateRequest{Text: text, SourceLanguage: source, TargetLanguage: target}
	if err := c.postJSON(ctx, "/translation", req, &out); err != nil {
		return "", fmt.Errorf("failed to translate text: %w", err)
	}
	if out.TranslatedText == "" {
		return "", errors.New("no translation result returned")
	}
	return out.TranslatedText, nil
}

type speechRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Voice    string `json:"voice"`
}

// speechEnvelope is the JSON form of a TTS reply; some deployments send
// base64 audio instead of raw bytes.
type speechEnvelope struct {
	Audios []string `json:"audios"`
}

func (c *Client) TextToSpeech(ctx context.Context, text, lang string) (*Speech, error) {
	l := Lookup(lang)
	if c.Mock() {
		return &Speech{Audio: mockSpeech(text), MimeType: "audio/wav"}, nil
	}

	body, err := json.Marshal(speechRequest{Text: text, Language: l.Code, Voice: l.Voice})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, "/text-to-speech", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	mime := resp.Header.Get("Content-Type")
	if strings.HasPrefix(mime, "application/json") {
		var env speechEnvelope
		if err := json.Unmarshal(data, &env); err != nil || len(env.Audios) == 0 {
			return nil, errors.New("no audio returned")
		}
		data, err = base64.StdEncoding.DecodeString(env.Audios[0])
		if err != nil {
			return nil, fmt.Errorf("failed to decode audio: %w", err)
		}
		mime = "audio/wav"
	}
	if mime == "" {
		mime = "audio/wav"
	}

	slog.Info("Generated audio from Sarvam", "text_length", len(text), "language", l.Code)
	return &Speech{Audio: data, MimeType: mime}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	resp, err := c.do(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("sarvam API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}
