package markup

import (
	"strings"
	"testing"

	"github.com/twkang/hanmaru/model"
)

func styledDoc() *model.Document {
	doc := model.NewDocument("hwp")
	doc.Styles[0] = model.CharStyle{}
	doc.Styles[1] = model.CharStyle{Bold: true}
	doc.Styles[2] = model.CharStyle{Italic: true}
	doc.Styles[3] = model.CharStyle{Bold: true, Italic: true}
	doc.Styles[4] = model.CharStyle{Underline: true}
	doc.Styles[5] = model.CharStyle{Strikeout: true}
	doc.Styles[6] = model.CharStyle{Bold: true, Underline: true, Strikeout: true}
	return doc
}

func para(runs ...model.StyledRun) *model.Paragraph {
	return &model.Paragraph{Runs: runs}
}

func TestRender_FrontMatter(t *testing.T) {
	doc := model.NewDocument("hwp")
	doc.Metadata.Title = "Quarterly Report"
	doc.Metadata.Author = "Kim"
	doc.Metadata.Keywords = []string{"finance", "q3"}
	doc.AddBlock(para(model.StyledRun{Text: "body", StyleID: model.DefaultStyle}))

	out := Render(doc, Options{Source: "report.hwp"})
	if !strings.HasPrefix(out, "---\n") {
		t.Fatalf("no front matter:\n%s", out)
	}
	for _, want := range []string{
		"format: hwp",
		"source: report.hwp",
		"title: Quarterly Report",
		"author: Kim",
		"keywords: finance, q3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("front matter missing %q:\n%s", want, out)
		}
	}

	plain := Render(doc, Options{NoFrontMatter: true})
	if strings.Contains(plain, "---\n") {
		t.Errorf("front matter not suppressed:\n%s", plain)
	}
}

func TestRender_FrontMatterQuoting(t *testing.T) {
	doc := model.NewDocument("hwp")
	doc.Metadata.Title = "Plan: 2026"
	out := Render(doc, Options{})
	if !strings.Contains(out, `title: "Plan: 2026"`) {
		t.Errorf("title with colon not quoted:\n%s", out)
	}
}

func TestRender_Emphasis(t *testing.T) {
	doc := styledDoc()
	cases := []struct {
		styleID int
		want    string
	}{
		{0, "plain"},
		{1, "**plain**"},
		{2, "*plain*"},
		{3, "***plain***"},
		{4, "<u>plain</u>"},
		{5, "~~plain~~"},
		{6, "<u>**~~plain~~**</u>"},
	}
	for _, tc := range cases {
		doc.Blocks = []model.Block{para(model.StyledRun{Text: "plain", StyleID: tc.styleID})}
		out := Render(doc, Options{NoFrontMatter: true})
		if got := strings.TrimSpace(out); got != tc.want {
			t.Errorf("style %d: got %q, want %q", tc.styleID, got, tc.want)
		}
	}
}

func TestRender_WhitespaceRunNotWrapped(t *testing.T) {
	doc := styledDoc()
	doc.AddBlock(para(
		model.StyledRun{Text: "a", StyleID: 1},
		model.StyledRun{Text: " ", StyleID: 1},
		model.StyledRun{Text: "b", StyleID: model.DefaultStyle},
	))
	out := strings.TrimSpace(Render(doc, Options{NoFrontMatter: true}))
	if out != "**a** b" {
		t.Errorf("got %q", out)
	}
}

func TestRender_Table(t *testing.T) {
	doc := model.NewDocument("hwp")
	doc.AddBlock(&model.Table{Rows: []model.TableRow{
		{Cells: []model.TableCell{tcell("h1", 1, 1), tcell("h2", 1, 1)}},
		{Cells: []model.TableCell{tcell("a|b", 1, 1), tcell("d2", 1, 1)}},
	}})
	out := Render(doc, Options{NoFrontMatter: true})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "| h1 | h2 |" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "| --- | --- |" {
		t.Errorf("separator = %q", lines[1])
	}
	if !strings.Contains(lines[2], `a\|b`) {
		t.Errorf("pipe not escaped: %q", lines[2])
	}
}

func TestRender_TableSpans(t *testing.T) {
	doc := model.NewDocument("hwp")
	doc.AddBlock(&model.Table{Rows: []model.TableRow{
		{Cells: []model.TableCell{tcell("head", 1, 2)}},
		{Cells: []model.TableCell{tcell("l", 1, 1), tcell("r", 1, 1)}},
	}})
	out := Render(doc, Options{NoFrontMatter: true})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "| head |  |" {
		t.Errorf("spanned header row = %q", lines[0])
	}
	if lines[2] != "| l | r |" {
		t.Errorf("base row = %q", lines[2])
	}
}

func tcell(text string, rowSpan, colSpan int) model.TableCell {
	return model.TableCell{
		Blocks:  []model.Block{para(model.StyledRun{Text: text, StyleID: model.DefaultStyle})},
		RowSpan: rowSpan,
		ColSpan: colSpan,
	}
}

func TestRender_ObjectRefAndPageBreak(t *testing.T) {
	doc := model.NewDocument("hwp")
	doc.Resources = append(doc.Resources, &model.Resource{
		ID:          "bin0001",
		ContentType: "image/png",
		Data:        []byte{1},
	})
	doc.AddBlock(para(model.StyledRun{Text: "p1", StyleID: model.DefaultStyle}))
	doc.AddBlock(&model.ObjectRef{ResourceID: "bin0001"})
	doc.AddBlock(&model.PageBreak{})
	doc.AddBlock(para(model.StyledRun{Text: "p2", StyleID: model.DefaultStyle}))

	out := Render(doc, Options{NoFrontMatter: true})
	if !strings.Contains(out, "![bin0001](assets/bin0001.png)") {
		t.Errorf("image reference missing:\n%s", out)
	}
	if !strings.Contains(out, "\n---\n") {
		t.Errorf("page break missing:\n%s", out)
	}

	custom := Render(doc, Options{NoFrontMatter: true, AssetDir: "img"})
	if !strings.Contains(custom, "![bin0001](img/bin0001.png)") {
		t.Errorf("asset dir not honored:\n%s", custom)
	}
}

func TestRender_BrokenResourceSkipped(t *testing.T) {
	doc := model.NewDocument("hwp")
	doc.Resources = append(doc.Resources, &model.Resource{
		ID:          "bin0001",
		ContentType: "application/octet-stream",
		Error:       "declared length exceeds stream",
	})
	doc.AddBlock(&model.ObjectRef{ResourceID: "bin0001"})
	doc.AddBlock(&model.ObjectRef{ResourceID: "bin0404"})

	out := Render(doc, Options{NoFrontMatter: true})
	if strings.Contains(out, "![") {
		t.Errorf("broken or dangling references rendered:\n%s", out)
	}
}

func TestRender_UnknownSkipped(t *testing.T) {
	doc := model.NewDocument("hwp")
	doc.AddBlock(&model.Unknown{Tag: 0x77})
	doc.AddBlock(para(model.StyledRun{Text: "visible", StyleID: model.DefaultStyle}))

	out := strings.TrimSpace(Render(doc, Options{NoFrontMatter: true}))
	if out != "visible" {
		t.Errorf("got %q", out)
	}
}
