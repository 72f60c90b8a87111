package ia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/demandas/internal/config"
)

// ErrSemSugestao cobre qualquer falha do provedor; o formulário segue intacto.
var ErrSemSugestao = errors.New("não foi possível gerar sugestão")

// ErrPromptVazio indica texto de entrada em branco.
var ErrPromptVazio = errors.New("descreva a demanda para gerar a sugestão")

const systemPrompt = `Você é um assistente especializado em gestão de demandas de TI.
Dada uma descrição ou palavra-chave, gere:
1. Um título profissional e conciso para a demanda
2. Uma descrição técnica organizada com contexto, objetivo e critérios de aceitação
3. Uma sugestão de prioridade: "Medium", "High" ou "Highst" (baseado na criticidade)
4. Um checklist técnico opcional com 3-5 itens

Responda SOMENTE em JSON válido, no formato:
{
  "titulo": "string",
  "descricao": "string",
  "prioridade": "Medium|High|Highst",
  "checklist": ["item1", "item2", "item3"]
}`

var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// Sugestao é o rascunho devolvido pelo modelo.
type Sugestao struct {
	Titulo     string   `json:"titulo"`
	Descricao  string   `json:"descricao"`
	Prioridade string   `json:"prioridade,omitempty"`
	Checklist  []string `json:"checklist,omitempty"`
}

// Client chama um endpoint compatível com chat completions.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
	valid   func(string) bool
}

// NewClient cria o cliente; validPrioridade filtra a prioridade sugerida.
func NewClient(cfg config.IAConfig, validPrioridade func(string) bool) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
		valid:   validPrioridade,
	}
}

// Enabled indica se há chave configurada.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Suggest gera título, descrição, prioridade e checklist para prompt.
func (c *Client) Suggest(ctx context.Context, prompt string) (*Sugestao, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrPromptVazio
	}
	if !c.Enabled() {
		return nil, ErrSemSugestao
	}

	content, err := c.complete(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("falha ao chamar provedor de IA")
		return nil, ErrSemSugestao
	}

	s, err := parseSugestao(content)
	if err != nil {
		log.Warn().Err(err).Msg("resposta da IA em formato inesperado")
		return nil, ErrSemSugestao
	}
	if s.Prioridade != "" && c.valid != nil && !c.valid(s.Prioridade) {
		s.Prioridade = ""
	}
	return s, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
		"max_tokens":  800,
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("llm status %d: %s", resp.StatusCode, data)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return result.Choices[0].Message.Content, nil
}

// parseSugestao aceita JSON puro ou o primeiro bloco {...} do texto.
func parseSugestao(content string) (*Sugestao, error) {
	var s Sugestao
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		block := jsonBlock.FindString(content)
		if block == "" {
			return nil, fmt.Errorf("no json in response: %w", err)
		}
		if err := json.Unmarshal([]byte(block), &s); err != nil {
			return nil, fmt.Errorf("parse json block: %w", err)
		}
	}
	s.Titulo = strings.TrimSpace(s.Titulo)
	s.Descricao = strings.TrimSpace(s.Descricao)
	s.Prioridade = strings.TrimSpace(s.Prioridade)
	if s.Titulo == "" && s.Descricao == "" {
		return nil, errors.New("empty suggestion")
	}
	return &s, nil
}
