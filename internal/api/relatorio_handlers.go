package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/auth"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/pdf"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/relatorio"
)

// chartResp é o formato que os gráficos do painel consomem.
type chartResp struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// periodo lê ?de= e ?ate= (AAAA-MM-DD); sem filtro válido o período é o mês
// corrente até agora. Datas malformadas são descartadas em silêncio, como na
// listagem de sessões.
func periodo(r *http.Request) (time.Time, time.Time) {
	now := time.Now()
	de := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	ate := now
	if v := r.URL.Query().Get("de"); v != "" {
		if t, err := ParseData(v); err == nil {
			de = t
		}
	}
	if v := r.URL.Query().Get("ate"); v != "" {
		if t, err := ParseData(v); err == nil {
			ate = t.AddDate(0, 0, 1).Add(-time.Second)
		}
	}
	return de, ate
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func (h *Handler) Relatorios(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	de, ate := periodo(r)
	g, err := relatorio.Estatisticas(r.Context(), h.DB, psicologoID, de, ate)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	porStatus, err := relatorio.PorStatus(r.Context(), h.DB, psicologoID, queryInt(r, "dias"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"periodo_inicio": de.Format("2006-01-02"),
		"periodo_fim":    ate.Format("2006-01-02"),
		"geral":          g,
		"por_status":     porStatus,
	})
}

func (h *Handler) RelatorioFinanceiro(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	de, ate := periodo(r)
	g, err := relatorio.Estatisticas(r.Context(), h.DB, psicologoID, de, ate)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	serie, err := relatorio.ReceitaMensal(r.Context(), h.DB, psicologoID, queryInt(r, "meses"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"periodo_inicio": de.Format("2006-01-02"),
		"periodo_fim":    ate.Format("2006-01-02"),
		"geral":          g,
		"receita_mensal": serie,
	})
}

// RelatorioFinanceiroPDF exporta o relatório financeiro do período como PDF.
func (h *Handler) RelatorioFinanceiroPDF(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	de, ate := periodo(r)
	g, err := relatorio.Estatisticas(r.Context(), h.DB, psicologoID, de, ate)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	serie, err := relatorio.ReceitaMensal(r.Context(), h.DB, psicologoID, queryInt(r, "meses"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	painelURL := "http://" + r.Host + "/relatorios"
	out, err := pdf.BuildRelatorioFinanceiroPDF(pdf.RelatorioFinanceiro{
		PsicologoNome: auth.NomeFrom(r.Context()),
		PeriodoInicio: de,
		PeriodoFim:    ate,
		Geral:         g,
		ReceitaMensal: serie,
		PainelURL:     painelURL,
	})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="relatorio-financeiro-%s.pdf"`, time.Now().Format("2006-01-02")))
	_, _ = w.Write(out)
}

func (h *Handler) ChartReceitaMensal(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	serie, err := relatorio.ReceitaMensal(r.Context(), h.DB, psicologoID, queryInt(r, "meses"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serieToChart(serie))
}

func (h *Handler) ChartSessoesMensal(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	serie, err := relatorio.SessoesMensal(r.Context(), h.DB, psicologoID, queryInt(r, "meses"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serieToChart(serie))
}

func (h *Handler) ChartComparecimento(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	serie, err := relatorio.ComparecimentoMensal(r.Context(), h.DB, psicologoID, queryInt(r, "meses"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serieToChart(serie))
}

func (h *Handler) ChartPorStatus(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	contagem, err := relatorio.PorStatus(r.Context(), h.DB, psicologoID, queryInt(r, "dias"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	// Ordem fixa para o gráfico de pizza não trocar as fatias de lugar.
	labels := []string{"agendada", "realizada", "cancelada", "faltou"}
	data := make([]float64, len(labels))
	for i, l := range labels {
		data[i] = float64(contagem[l])
	}
	writeJSON(w, http.StatusOK, chartResp{Labels: labels, Data: data})
}

func (h *Handler) ChartTopPacientes(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	ranking, err := relatorio.TopPacientes(r.Context(), h.DB, psicologoID, queryInt(r, "dias"), queryInt(r, "limite"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	out := chartResp{Labels: make([]string, len(ranking)), Data: make([]float64, len(ranking))}
	for i, p := range ranking {
		out.Labels[i] = p.Nome
		out.Data[i] = float64(p.Sessoes)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"labels":  out.Labels,
		"data":    out.Data,
		"ranking": ranking,
	})
}

func serieToChart(serie []relatorio.PontoMensal) chartResp {
	out := chartResp{Labels: make([]string, len(serie)), Data: make([]float64, len(serie))}
	for i, p := range serie {
		out.Labels[i] = p.Label
		out.Data[i] = p.Valor
	}
	return out
}
