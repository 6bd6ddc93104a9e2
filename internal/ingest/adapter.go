// Package ingest maps the results API's loosely shaped JSON onto the
// canonical record types. Every field alias the API has ever used is listed
// here and nowhere else.
package ingest

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
	"github.com/vytor/enemresultados/internal/datekey"
	"github.com/vytor/enemresultados/internal/models"
)

var ErrInvalidJSON = errors.New("payload is not valid JSON")

var (
	// listKeys are the object keys a bare list may hide under.
	listKeys = []string{
		"historico", "historicoSimulados", "simulados", "respostas",
		"items", "rows", "lista", "registros", "data",
	}
	nestedListKeys = []string{
		"historico.items", "historico.rows", "historico.data",
		"dados.items", "dados.rows",
		"data.items", "data.rows",
		"result.items", "result.rows",
	}
	unwrapKeys = []string{"data", "dados", "result", "results", "payload", "response"}

	rowDateKeys = []string{"data", "date", "created_at", "updated_at", "timestamp", "at", "taken_at"}
	weekdayKeys = []string{"dia", "weekday"}

	subjectKeys  = []string{"materia", "area", "disciplina", "subject"}
	accuracyKeys = []string{"taxa_acerto", "percentual", "percentual_acerto", "taxa", "valor", "accuracy_rate"}

	questionKeys = []string{"questoes", "questions"}
	minuteKeys   = []string{"minutos", "minutes"}

	simuladoDateKeys = []string{
		"data", "data_realizacao", "dataRealizacao", "data_inicio", "dataInicio",
		"data_fim", "dataFim", "finalizado_em", "finalizadoEm", "respondido_em",
		"respondidoEm", "created_at", "createdAt", "updated_at", "updatedAt",
		"criado_em", "criadoEm",
	}
	simuladoSubjectKeys = []string{"materias", "materias_selecionadas", "areas", "disciplinas"}
	simuladoTitleKeys   = []string{"titulo", "nome", "nome_simulado", "nomeSimulado", "simulado"}
	simuladoTotalKeys   = []string{
		"total_questoes", "totalQuestoes", "questoes_total", "questoesTotal",
		"total", "qtd_questoes", "qtdQuestoes",
	}
	simuladoCorrectKeys = []string{
		"acertos", "qt_acertos", "qtd_acertos", "corretas", "qtdCorretas",
		"total_acertos", "totalAcertos",
	}
	simuladoRateKeys = []string{
		"taxa_acerto", "taxaAcerto", "percentual", "percentual_acerto",
		"percentualAcerto", "score", "nota_percentual",
	}
)

func parse(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, ErrInvalidJSON
	}
	return gjson.ParseBytes(raw), nil
}

// Performance reads daily accuracy rows. The list may be the payload itself,
// sit under evolucao_diaria, or under any of the generic envelopes.
func Performance(raw []byte, loc *time.Location) ([]models.PerformanceRecord, error) {
	root, err := parse(raw)
	if err != nil {
		return nil, err
	}

	var out []models.PerformanceRecord
	for _, row := range rows(root, "evolucao_diaria") {
		rec := models.PerformanceRecord{
			Subject:      first(row, subjectKeys...).String(),
			AccuracyRate: number(first(row, accuracyKeys...)),
		}
		if t, ok := firstDate(row, loc, rowDateKeys...); ok {
			rec.TakenAt = &t
		} else if t, ok := stringDate(row.Get("dia"), loc); ok {
			rec.TakenAt = &t
		} else if i, ok := weekdayIndex(first(row, weekdayKeys...)); ok {
			rec.Weekday = &i
		}
		out = append(out, rec)
	}
	return out, nil
}

// Activity reads per-day study activity, usually under atividade_semanal.
func Activity(raw []byte, loc *time.Location) ([]models.ActivityRecord, error) {
	root, err := parse(raw)
	if err != nil {
		return nil, err
	}

	var out []models.ActivityRecord
	for _, row := range rows(root, "atividade_semanal") {
		rec := models.ActivityRecord{
			QuestionsCount: number(first(row, questionKeys...)),
			MinutesSpent:   number(first(row, minuteKeys...)),
		}
		if i, ok := weekdayIndex(first(row, weekdayKeys...)); ok {
			rec.Weekday = &i
		}
		if t, ok := firstDate(row, loc, rowDateKeys...); ok {
			rec.TakenAt = &t
		}
		out = append(out, rec)
	}
	return out, nil
}

// Simulados reads the practice exam history.
func Simulados(raw []byte, loc *time.Location) ([]models.SimuladoRecord, error) {
	root, err := parse(raw)
	if err != nil {
		return nil, err
	}

	var out []models.SimuladoRecord
	for _, row := range rows(root) {
		rec := models.SimuladoRecord{
			Title:        firstString(row, simuladoTitleKeys...),
			Subjects:     stringList(first(row, simuladoSubjectKeys...)),
			Correct:      int(number(first(row, simuladoCorrectKeys...))),
			AccuracyRate: number(first(row, simuladoRateKeys...)),
		}
		if total := first(row, simuladoTotalKeys...); total.Exists() {
			rec.Total = int(number(total))
		} else if qs := row.Get("questoes"); qs.IsArray() {
			rec.Total = len(qs.Array())
		}
		if t, ok := firstDate(row, loc, simuladoDateKeys...); ok {
			rec.TakenAt = &t
		}
		out = append(out, rec)
	}
	return out, nil
}

// Essays reads a student's redações from data.redacoes, redacoes or a bare list.
func Essays(raw []byte, loc *time.Location) ([]models.EssayRecord, error) {
	root, err := parse(raw)
	if err != nil {
		return nil, err
	}

	var list []gjson.Result
	switch {
	case root.Get("data.redacoes").IsArray():
		list = root.Get("data.redacoes").Array()
	case root.Get("redacoes").IsArray():
		list = root.Get("redacoes").Array()
	case root.IsArray():
		list = root.Array()
	}

	out := make([]models.EssayRecord, 0, len(list))
	for _, row := range list {
		rec := models.EssayRecord{
			Theme:       row.Get("tema").String(),
			Status:      strings.ToLower(strings.TrimSpace(row.Get("status").String())),
			CreatedAt:   datePtr(firstDate(row, loc, "criado_em", "created_at")),
			UpdatedAt:   datePtr(firstDate(row, loc, "atualizado_em", "updated_at")),
			SentAt:      datePtr(firstDate(row, loc, "enviado_em")),
			CorrectedAt: datePtr(firstDate(row, loc, "corrigido_em")),
		}
		if score := row.Get("nota_total"); score.Exists() && score.Type != gjson.Null {
			v := number(score)
			rec.Score = &v
		}
		out = append(out, rec)
	}
	return out, nil
}

// rows finds the record list in a payload: the payload itself, a named
// wrapper, a known list key, a nested list key, then the same search on the
// unwrapped data envelope.
func rows(root gjson.Result, wrappers ...string) []gjson.Result {
	candidates := []gjson.Result{root}
	for _, k := range unwrapKeys {
		if v := root.Get(k); v.IsObject() || v.IsArray() {
			candidates = append(candidates, v)
			break
		}
	}

	for _, c := range candidates {
		if c.IsArray() {
			return c.Array()
		}
		for _, group := range [][]string{wrappers, listKeys, nestedListKeys} {
			for _, k := range group {
				if v := c.Get(k); v.IsArray() {
					return v.Array()
				}
			}
		}
	}
	return nil
}

// first returns the first alias that is present and not null.
func first(obj gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func firstString(obj gjson.Result, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(obj.Get(k).String()); s != "" {
			return s
		}
	}
	return ""
}

// firstDate returns the first alias that parses as a date.
func firstDate(obj gjson.Result, loc *time.Location, keys ...string) (time.Time, bool) {
	for _, k := range keys {
		v := obj.Get(k)
		switch v.Type {
		case gjson.String:
			if t, ok := datekey.Parse(v.Str, loc); ok {
				return t, true
			}
		case gjson.Number:
			if t, ok := datekey.Parse(v.Num, loc); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func stringDate(v gjson.Result, loc *time.Location) (time.Time, bool) {
	if v.Type != gjson.String {
		return time.Time{}, false
	}
	return datekey.Parse(v.Str, loc)
}

func datePtr(t time.Time, ok bool) *time.Time {
	if !ok {
		return nil
	}
	return &t
}

// number coerces anything to a finite float; non-numeric values read as 0.
func number(v gjson.Result) float64 {
	if !v.Exists() {
		return 0
	}
	f, err := cast.ToFloat64E(v.Value())
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func weekdayIndex(v gjson.Result) (int, bool) {
	if !v.Exists() || v.Type == gjson.Null {
		return 0, false
	}
	f, err := cast.ToFloat64E(v.Value())
	if err != nil || f != math.Trunc(f) || f < 0 || f > 6 {
		return 0, false
	}
	return int(f), true
}

func stringList(v gjson.Result) []string {
	var out []string
	switch {
	case v.IsArray():
		for _, item := range v.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
	case v.Type == gjson.String:
		for _, part := range strings.Split(v.Str, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
