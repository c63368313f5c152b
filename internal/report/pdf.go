// Package report 生成诊断会话的 PDF 报告。
package report

import (
	"bytes"
	"fmt"

	"osteo-upgrade-go/internal/model"

	"github.com/go-pdf/fpdf"
)

// 品牌与排版颜色。
var (
	colorHeader   = rgb{74, 144, 226}  // #4A90E2
	colorSubtitle = rgb{123, 135, 148} // #7B8794
	colorSection  = rgb{44, 62, 80}    // #2C3E50
	colorBody     = rgb{60, 60, 60}

	severityColors = map[string]rgb{
		model.SeveritySuccess: {39, 174, 96},  // #27AE60
		model.SeverityWarning: {243, 156, 18}, // #F39C12
		model.SeverityDanger:  {231, 76, 60},  // #E74C3C
	}
)

type rgb struct{ r, g, b int }

// Filename 返回一份诊断报告的下载文件名。
func Filename(diagnosticID uint) string {
	return fmt.Sprintf("diagnostic-%d.pdf", diagnosticID)
}

// Render 将一条诊断记录渲染为 PDF 字节流。
// 文档的创建时间固定为记录的创建时间，同一条记录总是渲染出
// 完全一致的字节，归档对象可以安全地按内容覆盖。
func Render(diagnostic *model.DiagnosticSession, user *model.User) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(diagnostic.CreatedAt)
	pdf.SetModificationDate(diagnostic.CreatedAt)
	pdf.SetTitle(fmt.Sprintf("Rapport de diagnostic #%d", diagnostic.ID), true)
	pdf.SetAuthor("OsteoUpgrade", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// 页眉
	setColor(pdf, colorHeader)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, "OsteoUpgrade", "", 1, "C", false, 0, "")
	setColor(pdf, colorSubtitle)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, tr("Rapport de diagnostic"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// 会话信息
	setColor(pdf, colorSection)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr("Informations"), "", 1, "L", false, 0, "")
	setColor(pdf, colorBody)
	pdf.SetFont("Helvetica", "", 11)
	infoLine(pdf, tr, "Praticien", user.Name)
	infoLine(pdf, tr, "Arbre décisionnel", diagnostic.TreeName)
	infoLine(pdf, tr, "Date", diagnostic.CreatedAt.Format("02/01/2006 15:04"))
	infoLine(pdf, tr, "Étapes parcourues", fmt.Sprintf("%d", len(diagnostic.PathIDs)))
	pdf.Ln(6)

	// 结果
	severity, ok := severityColors[diagnostic.ResultSeverity]
	if !ok {
		severity = colorSection
	}
	setColor(pdf, colorSection)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr("Résultat du Diagnostic"), "", 1, "L", false, 0, "")
	setColor(pdf, severity)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 9, tr(diagnostic.ResultTitle), "", "L", false)
	setColor(pdf, colorBody)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(diagnostic.ResultDescription), "", "L", false)
	pdf.Ln(4)

	// 建议
	if len(diagnostic.RecommendationList) > 0 {
		setColor(pdf, colorSection)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, tr("Recommandations"), "", 1, "L", false, 0, "")
		setColor(pdf, colorBody)
		pdf.SetFont("Helvetica", "", 11)
		for i, rec := range diagnostic.RecommendationList {
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, rec)), "", "L", false)
		}
		pdf.Ln(4)
	}

	// 页脚免责声明
	pdf.SetY(-30)
	setColor(pdf, colorSubtitle)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, tr("Ce rapport est généré automatiquement à titre indicatif. "+
		"Il ne remplace pas un avis médical."), "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func infoLine(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(50, 6, tr(label), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func setColor(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetTextColor(c.r, c.g, c.b)
}
