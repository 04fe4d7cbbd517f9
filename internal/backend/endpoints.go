package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/christopherklint97/ponto/internal/period"
	"github.com/christopherklint97/ponto/internal/records"
)

// ListManagerEntries fetches the apontamentos of a manager's team in p.
func (c *Client) ListManagerEntries(ctx context.Context, managerID int64, p period.Period) Result[[]records.Raw] {
	path := fmt.Sprintf("/apontamento-horas/gerente/%d", managerID)
	data, err := c.Get(ctx, path, p.Query())
	if err != nil {
		return FromError[[]records.Raw](fmt.Errorf("listing apontamentos: %w", err))
	}

	list, err := decodeList(data)
	if err != nil {
		return Failure[[]records.Raw](fmt.Errorf("parsing apontamentos response: %w", err))
	}
	if len(list) == 0 {
		return Empty[[]records.Raw]()
	}
	return OK(list)
}

// ListOvertime fetches one employee's horas extras in p.
func (c *Client) ListOvertime(ctx context.Context, employeeID int64, p period.Period) Result[OvertimeSummary] {
	path := fmt.Sprintf("/horas-extras/listar-horas/%d", employeeID)
	data, err := c.Get(ctx, path, p.Query())
	if err != nil {
		return FromError[OvertimeSummary](fmt.Errorf("listing horas extras: %w", err))
	}

	summary, err := decodeOvertime(data)
	if err != nil {
		return Failure[OvertimeSummary](fmt.Errorf("parsing horas extras response: %w", err))
	}
	if len(summary.Entries) == 0 && summary.TotalHours == 0 {
		return Empty[OvertimeSummary]()
	}
	return OK(summary)
}

// MissingHours fetches the team's missing-hours total for p. The backend
// computes it; the client only reads the scalar.
func (c *Client) MissingHours(ctx context.Context, managerID int64, p period.Period) Result[float64] {
	path := fmt.Sprintf("/apontamento-horas/gerente/%d/horas-faltantes", managerID)
	data, err := c.Get(ctx, path, p.Query())
	if err != nil {
		return FromError[float64](fmt.Errorf("fetching horas faltantes: %w", err))
	}

	v, err := decodeAny(data)
	if err != nil {
		return Failure[float64](fmt.Errorf("parsing horas faltantes response: %w", err))
	}
	if obj, ok := v.(map[string]any); ok {
		v, _ = records.Field(obj, missingHoursFields...)
	}
	return OK(records.Number(v))
}

// Login exchanges credentials for an opaque token and starts using it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	data, err := c.Post(ctx, "/auth/login", LoginRequest{Email: email, Senha: password})
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}

	var resp struct {
		Token       string `json:"token"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		// some deployments answer with the bare token
		token := strings.Trim(strings.TrimSpace(string(data)), `"`)
		if token == "" || strings.ContainsAny(token, "{}[] ") {
			return "", fmt.Errorf("parsing login response: %w", err)
		}
		resp.Token = token
	}

	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		return "", errors.New("login response carried no token")
	}

	c.SetToken(token)
	return token, nil
}

func decodeAny(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeList accepts a bare array or an object wrapping one. Non-object
// elements are dropped.
func decodeList(data []byte) ([]records.Raw, error) {
	v, err := decodeAny(data)
	if err != nil {
		return nil, err
	}
	if obj, ok := v.(map[string]any); ok {
		v = nil
		for _, key := range listEnvelopeFields {
			if arr, ok := obj[key].([]any); ok {
				v = arr
				break
			}
		}
	}
	return toRaws(v), nil
}

func toRaws(v any) []records.Raw {
	arr, _ := v.([]any)
	out := make([]records.Raw, 0, len(arr))
	for _, item := range arr {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func decodeOvertime(data []byte) (OvertimeSummary, error) {
	v, err := decodeAny(data)
	if err != nil {
		return OvertimeSummary{}, err
	}

	var items []records.Raw
	summary := OvertimeSummary{}
	switch body := v.(type) {
	case []any:
		items = toRaws(body)
	case map[string]any:
		if total, ok := records.Field(body, overtimeTotalFields...); ok {
			summary.TotalHours = records.Number(total)
		}
		for _, key := range overtimeListFields {
			if arr, ok := body[key].([]any); ok {
				items = toRaws(arr)
				break
			}
		}
	}

	sum := 0.0
	for _, raw := range items {
		entry := OvertimeEntry{TimeRecord: records.Normalize(raw)}
		if v, ok := records.Field(raw, justificationFields...); ok {
			entry.Justification, _ = v.(string)
		}
		if v, ok := records.Field(raw, overtimeStatusFields...); ok {
			entry.Status, _ = v.(string)
		}
		sum += entry.HoursWorked
		summary.Entries = append(summary.Entries, entry)
	}
	if summary.TotalHours == 0 {
		summary.TotalHours = sum
	}
	return summary, nil
}
