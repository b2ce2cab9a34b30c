package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/relatorio"
)

// RelatorioFinanceiro agrupa o que vai impresso no PDF financeiro.
type RelatorioFinanceiro struct {
	PsicologoNome string
	PeriodoInicio time.Time
	PeriodoFim    time.Time
	Geral         *relatorio.Geral
	ReceitaMensal []relatorio.PontoMensal
	PainelURL     string // URL do painel; vira QR no rodapé
}

// BuildRelatorioFinanceiroPDF monta o PDF do relatório financeiro: cabeçalho,
// resumo do período, tabela de receita mensal e QR para o painel.
func BuildRelatorioFinanceiroPDF(rel RelatorioFinanceiro) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "MindCare Pro - Relatorio Financeiro", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Psicologo(a): %s", rel.PsicologoNome), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Periodo: %s a %s", rel.PeriodoInicio.Format("02/01/2006"), rel.PeriodoFim.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	g := rel.Geral
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Resumo do periodo", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	linhas := []string{
		fmt.Sprintf("Sessoes no periodo: %d (realizadas %d, agendadas %d, canceladas %d, faltas %d)",
			g.TotalSessoes, g.SessoesRealizadas, g.SessoesAgendadas, g.SessoesCanceladas, g.SessoesFaltou),
		fmt.Sprintf("Receita realizada: R$ %.2f", g.ReceitaTotal),
		fmt.Sprintf("Receita pendente: R$ %.2f", g.ReceitaPendente),
		fmt.Sprintf("Valor medio por sessao realizada: R$ %.2f", g.ValorMedioSessao),
		fmt.Sprintf("Taxa de comparecimento: %.1f%%", g.TaxaComparecimento),
		fmt.Sprintf("Pacientes ativos: %d de %d", g.PacientesAtivos, g.TotalPacientes),
	}
	for _, l := range linhas {
		pdf.CellFormat(0, 6, l, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Receita realizada por mes", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 7, "Mes", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 7, "Receita (R$)", "1", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, p := range rel.ReceitaMensal {
		pdf.CellFormat(40, 7, p.Label, "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 7, fmt.Sprintf("%.2f", p.Valor), "1", 1, "R", false, 0, "")
	}

	if rel.PainelURL != "" {
		qrPNG, err := qrcode.Encode(rel.PainelURL, qrcode.Medium, 128)
		if err == nil {
			pdf.Ln(8)
			alias := "painelqr"
			opts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(alias, opts, bytes.NewReader(qrPNG))
			pdf.ImageOptions(alias, 15, pdf.GetY(), 28, 28, false, opts, 0, "")
			pdf.SetXY(48, pdf.GetY()+10)
			pdf.SetFont("Helvetica", "", 8)
			pdf.CellFormat(0, 5, "Acesse o painel para graficos atualizados.", "", 1, "L", false, 0, "")
		}
	}

	pdf.SetY(-20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Gerado em %s", time.Now().Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
