package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atlaslearn/atlas/backend/sarvam"
	"github.com/atlaslearn/atlas/backend/upstream"
)

const (
	maxAudioBytes = 16 << 20

	clarifyModel   = "atlas-clarify"
	greetingModel  = "atlas-greeting"
	voiceSessionID = "voice"
)

// VoiceEndpoints serves the multilingual voice assistant.
type VoiceEndpoints struct {
	assistant *Assistant
	speech    *sarvam.Client
	cache     *AudioCache
}

func NewVoiceEndpoints(assistant *Assistant, speech *sarvam.Client, cache *AudioCache) *VoiceEndpoints {
	return &VoiceEndpoints{assistant: assistant, speech: speech, cache: cache}
}

func (e *VoiceEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/voice-assistant", func(r chi.Router) {
		r.Post("/", e.AskHandler)
		r.Get("/languages", e.LanguagesHandler)
		r.Get("/greeting", e.GreetingHandler)
	})
}

type voiceRequest struct {
	Message  string `json:"message"`
	Email    string `json:"email"`
	Language string `json:"language"`
	Speak    bool   `json:"speak"`
	audio    []byte
}

type voiceResponse struct {
	Text        string `json:"text"`
	Model       string `json:"model"`
	Language    string `json:"language"`
	Transcript  string `json:"transcript,omitempty"`
	EnglishText string `json:"english_text,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
	AudioMime   string `json:"audio_mime,omitempty"`
	upstream.Meta
}

// parseVoiceRequest accepts either a JSON body or a multipart form with
// an optional "audio" file.
func parseVoiceRequest(r *http.Request) (*voiceRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req voiceRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		return nil, err
	}
	req := &voiceRequest{
		Message:  r.FormValue("message"),
		Email:    r.FormValue("email"),
		Language: r.FormValue("language"),
	}
	req.Speak, _ = strconv.ParseBool(r.FormValue("speak"))

	file, _, err := r.FormFile("audio")
	if err == http.ErrMissingFile {
		return req, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if req.audio, err = io.ReadAll(file); err != nil {
		return nil, err
	}
	return req, nil
}

func (e *VoiceEndpoints) AskHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	req, err := parseVoiceRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	if _, ok := UserFromContext(ctx); !ok && strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	owner, err := resolveOwner(ctx, e.assistant.store, req.Email)
	if err != nil {
		slog.Error("Failed to resolve voice assistant user", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	profile := profileOf(owner)

	lang := e.speech.DefaultLanguage()
	if req.Language != "" {
		code, ok := sarvam.Canonical(req.Language)
		if !ok {
			writeError(w, http.StatusBadRequest, "Unsupported language")
			return
		}
		lang = code
	} else if len(req.audio) > 0 {
		lang = e.speech.DetectLanguage(ctx, req.audio)
	}

	resp := voiceResponse{Language: lang}
	question := strings.TrimSpace(req.Message)
	if len(req.audio) > 0 {
		transcript, err := e.speech.Transcribe(ctx, req.audio, lang)
		if err != nil {
			slog.Error("Failed to transcribe audio", "error", err, "language", lang)
			writeError(w, http.StatusBadGateway, "Failed to transcribe audio")
			return
		}
		resp.Transcript = transcript
		question = strings.TrimSpace(transcript)
	}

	var out upstream.Outcome[Reply]
	phrase := ""
	if question == "" {
		phrase = ClarifyPhrase
		out = upstream.Local(Reply{Text: ClarifyPhrase, Model: clarifyModel})
	} else {
		english := e.translate(ctx, question, lang, sarvam.DefaultLanguage)
		if english != question {
			resp.EnglishText = english
		}
		out = e.assistant.Answer(ctx, profile, english, true)
		e.assistant.Remember(ctx, profile, voiceSessionID, lang, question, out.Value)
	}

	resp.Text = e.translate(ctx, out.Value.Text, sarvam.DefaultLanguage, lang)
	resp.Model = out.Value.Model
	resp.Meta = out.Meta()

	if req.Speak {
		if speech, err := e.synthesize(ctx, phrase, resp.Text, lang); err != nil {
			slog.Warn("Failed to synthesize answer", "error", err, "language", lang)
		} else {
			resp.AudioBase64 = base64.StdEncoding.EncodeToString(speech.Audio)
			resp.AudioMime = speech.MimeType
		}
	}

	slog.Info("Voice assistant answered", "language", lang, "source", out.Source, "spoken", req.Speak, "user", displayName(owner))
	writeOutcome(w, out, resp)
}

// translate falls back to the untranslated text on failure.
func (e *VoiceEndpoints) translate(ctx context.Context, text, source, target string) string {
	translated, err := e.speech.Translate(ctx, text, source, target)
	if err != nil {
		slog.Warn("Translation failed, keeping original text", "error", err, "source", source, "target", target)
		return text
	}
	return translated
}

// synthesize speaks text in lang. When text renders one of the fixed
// phrases, the audio is cached under the English phrase.
func (e *VoiceEndpoints) synthesize(ctx context.Context, phrase, text, lang string) (*sarvam.Speech, error) {
	generate := func() (*sarvam.Speech, error) {
		return e.speech.TextToSpeech(ctx, text, lang)
	}
	if e.cache == nil || phrase == "" {
		return generate()
	}
	return e.cache.GetOrGenerate(ctx, phrase, sarvam.VoiceFor(lang), generate)
}

// GreetingHandler returns the assistant greeting in the requested language,
// spoken unless speak=false.
func (e *VoiceEndpoints) GreetingHandler(w http.ResponseWriter, r *http.Request) {
	lang := e.speech.DefaultLanguage()
	if q := r.URL.Query().Get("language"); q != "" {
		code, ok := sarvam.Canonical(q)
		if !ok {
			writeError(w, http.StatusBadRequest, "Unsupported language")
			return
		}
		lang = code
	}

	ctx := r.Context()
	resp := voiceResponse{
		Text:     e.translate(ctx, GreetingPhrase, sarvam.DefaultLanguage, lang),
		Model:    greetingModel,
		Language: lang,
		Meta:     upstream.Meta{Source: upstream.SourceLocal},
	}
	if speak, err := strconv.ParseBool(r.URL.Query().Get("speak")); err != nil || speak {
		if speech, err := e.synthesize(ctx, GreetingPhrase, resp.Text, lang); err != nil {
			slog.Warn("Failed to synthesize greeting", "error", err, "language", lang)
		} else {
			resp.AudioBase64 = base64.StdEncoding.EncodeToString(speech.Audio)
			resp.AudioMime = speech.MimeType
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *VoiceEndpoints) LanguagesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": sarvam.SupportedLanguages(),
		"default":   e.speech.DefaultLanguage(),
		"mock":      e.speech.Mock(),
	})
}
