package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleXML = `<?xml version="1.0"?>
<article article-type="review-article">
  <front>
    <journal-meta>
      <journal-title-group>
        <journal-title>Nature Medicine</journal-title>
      </journal-title-group>
      <issn>1078-8956</issn>
    </journal-meta>
    <article-meta>
      <article-id pub-id-type="doi">10.1038/s41591-021-01230-y</article-id>
      <article-id pub-id-type="pmc">PMC7825654</article-id>
      <article-id pub-id-type="pmid">33442018</article-id>
      <title-group>
        <article-title>Efficacy of <italic>mRNA</italic> vaccines</article-title>
      </title-group>
      <contrib-group>
        <contrib contrib-type="author">
          <contrib-id contrib-id-type="orcid">0000-0002-1825-0097</contrib-id>
          <name>
            <surname>Smith</surname>
            <given-names>Jane</given-names>
          </name>
        </contrib>
        <contrib contrib-type="author">
          <name>
            <surname>Doe</surname>
          </name>
        </contrib>
        <contrib contrib-type="editor">
          <name>
            <surname>Ignored</surname>
            <given-names>Also</given-names>
          </name>
        </contrib>
      </contrib-group>
      <pub-date pub-type="ppub">
        <year>2022</year>
      </pub-date>
      <pub-date date-type="pub">
        <day>5</day>
        <month>3</month>
        <year>2021</year>
      </pub-date>
      <abstract>
        <p>Vaccines show <bold>high</bold> efficacy.</p>
      </abstract>
      <kwd-group>
        <kwd>vaccines</kwd>
        <kwd>mRNA</kwd>
        <kwd>vaccines</kwd>
        <kwd>  </kwd>
      </kwd-group>
    </article-meta>
  </front>
  <body>
    <sec>
      <title>Introduction</title>
      <p>Trial enrolled <xref>43,548</xref> participants.</p>
    </sec>
  </body>
</article>`

func TestExtract_FullArticle(t *testing.T) {
	e := New()
	e.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	a, err := e.ExtractBytes([]byte(sampleXML))
	if err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}

	if a.DOI != "10.1038/s41591-021-01230-y" {
		t.Errorf("DOI = %q", a.DOI)
	}
	if a.PMID != "33442018" {
		t.Errorf("PMID = %q", a.PMID)
	}
	if a.Title != "Efficacy of mRNA vaccines" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.Abstract != "Vaccines show high efficacy." {
		t.Errorf("Abstract = %q", a.Abstract)
	}
	wantFull := "Vaccines show high efficacy. Introduction Trial enrolled 43,548 participants."
	if a.FullText != wantFull {
		t.Errorf("FullText = %q, want %q", a.FullText, wantFull)
	}
	if len(a.Authors) != 2 {
		t.Fatalf("len(Authors) = %d, want 2", len(a.Authors))
	}
	if a.Authors[0].FullName != "Jane Smith" || a.Authors[0].ORCID != "0000-0002-1825-0097" {
		t.Errorf("Authors[0] = %+v", a.Authors[0])
	}
	if a.Authors[1].FullName != "Doe" {
		t.Errorf("Authors[1].FullName = %q, want surname alone", a.Authors[1].FullName)
	}
	if a.Journal.Title != "Nature Medicine" || a.Journal.ISSN != "1078-8956" {
		t.Errorf("Journal = %+v", a.Journal)
	}
	if a.PublicationDate != "2021-03-05" {
		t.Errorf("PublicationDate = %q, want date-type=pub to win over ppub", a.PublicationDate)
	}
	if a.ArticleType != "review-article" {
		t.Errorf("ArticleType = %q", a.ArticleType)
	}
	wantKwds := []string{"vaccines", "mRNA"}
	if len(a.Keywords) != len(wantKwds) {
		t.Fatalf("Keywords = %v, want %v", a.Keywords, wantKwds)
	}
	for i, k := range wantKwds {
		if a.Keywords[i] != k {
			t.Errorf("Keywords[%d] = %q, want %q", i, a.Keywords[i], k)
		}
	}
	if !a.ProcessedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("ProcessedAt = %v", a.ProcessedAt)
	}
}

func TestExtract_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		xml     string
		wantErr error
	}{
		{
			name:    "no identifier",
			xml:     `<article><article-title>Orphan</article-title></article>`,
			wantErr: ErrNoIdentifier,
		},
		{
			name:    "no title",
			xml:     `<article><article-id pub-id-type="doi">10.1/x</article-id></article>`,
			wantErr: ErrNoTitle,
		},
		{
			name: "whitespace title",
			xml: `<article><article-id pub-id-type="pmid">123</article-id>` +
				`<article-title>   </article-title></article>`,
			wantErr: ErrNoTitle,
		},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ExtractBytes([]byte(tt.xml))
			if err != tt.wantErr {
				t.Errorf("ExtractBytes() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtract_MalformedXML(t *testing.T) {
	e := New()
	if _, err := e.ExtractBytes([]byte("<article><unclosed>")); err == nil {
		t.Error("ExtractBytes() on malformed XML: want error, got nil")
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "article.xml")
	if err := os.WriteFile(path, []byte(sampleXML), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := New().ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile() error = %v", err)
	}
	if a.DOI != "10.1038/s41591-021-01230-y" {
		t.Errorf("DOI = %q", a.DOI)
	}

	if _, err := New().ExtractFile(filepath.Join(dir, "missing.xml")); err == nil {
		t.Error("ExtractFile() on missing file: want error, got nil")
	}
}

func TestExtractPublicationDate(t *testing.T) {
	tests := []struct {
		name string
		meta string
		want string
	}{
		{
			name: "year only",
			meta: `<pub-date><year>2020</year></pub-date>`,
			want: "2020-01-01",
		},
		{
			name: "single digit month and day",
			meta: `<pub-date><year>2020</year><month>3</month><day>5</day></pub-date>`,
			want: "2020-03-05",
		},
		{
			name: "invalid day falls back to january first",
			meta: `<pub-date><year>2020</year><month>2</month><day>31</day></pub-date>`,
			want: "2020-01-01",
		},
		{
			name: "non-numeric month falls back",
			meta: `<pub-date><year>2019</year><month>Mar</month></pub-date>`,
			want: "2019-01-01",
		},
		{
			name: "no year means no date",
			meta: `<pub-date><month>6</month><day>1</day></pub-date>`,
			want: "",
		},
		{
			name: "no pub-date at all",
			meta: ``,
			want: "",
		},
		{
			name: "epub preferred over plain",
			meta: `<pub-date pub-type="ppub"><year>2018</year></pub-date>` +
				`<pub-date pub-type="epub"><year>2017</year><month>12</month><day>25</day></pub-date>`,
			want: "2017-12-25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xml := `<article><article-id pub-id-type="doi">10.1/d</article-id>` +
				`<article-title>T</article-title>` + tt.meta + `</article>`
			a, err := New().ExtractBytes([]byte(xml))
			if err != nil {
				t.Fatalf("ExtractBytes() error = %v", err)
			}
			if a.PublicationDate != tt.want {
				t.Errorf("PublicationDate = %q, want %q", a.PublicationDate, tt.want)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "a \t\n b", "a b"},
		{"strips control chars", "a\x00b\x1fc", "abc"},
		{"keeps tab and newline as whitespace", "a\tb\nc", "a b c"},
		{"collapses period runs", "wait.....done", "wait...done"},
		{"trims", "  padded  ", "padded"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanText(tt.in); got != tt.want {
				t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtract_MissingSectionsDefaulted(t *testing.T) {
	xml := `<article><article-id pub-id-type="pmid">99</article-id>` +
		`<article-title>Bare minimum</article-title></article>`
	a, err := New().ExtractBytes([]byte(xml))
	if err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	if a.Journal.Title != "Unknown Journal" {
		t.Errorf("Journal.Title = %q, want default", a.Journal.Title)
	}
	if a.ArticleType != "research-article" {
		t.Errorf("ArticleType = %q, want default", a.ArticleType)
	}
	if a.Abstract != "" || a.FullText != "" {
		t.Errorf("Abstract/FullText = %q/%q, want empty", a.Abstract, a.FullText)
	}
	if len(a.Authors) != 0 || len(a.Keywords) != 0 {
		t.Errorf("Authors/Keywords not empty: %v / %v", a.Authors, a.Keywords)
	}
}

func TestTextContent_TailText(t *testing.T) {
	// Text after an inline element must not be dropped.
	xml := `<article><article-id pub-id-type="doi">10.1/d</article-id>` +
		`<article-title>Role of <italic>p53</italic> in repair</article-title></article>`
	a, err := New().ExtractBytes([]byte(xml))
	if err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	if !strings.Contains(a.Title, "in repair") {
		t.Errorf("Title = %q, tail text lost", a.Title)
	}
	if a.Title != "Role of p53 in repair" {
		t.Errorf("Title = %q", a.Title)
	}
}
