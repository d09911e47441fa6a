package assembly

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc"
)

// Profile carries the regional wording printed on generated pages.
type Profile struct {
	Region      string   `yaml:"region"`
	Head        string   `yaml:"head"`
	Subject     []string `yaml:"subject"`
	FontFamily  string   `yaml:"fontFamily"`
	SealWidthPx int      `yaml:"sealWidthPx"`
}

// DefaultProfile returns the wording used when no profile file is configured.
func DefaultProfile() Profile {
	return Profile{
		Region: "KABUPATEN",
		Head:   "BUPATI",
		Subject: []string{
			"PERTANGGUNGJAWABAN PELAKSANAAN",
			"ANGGARAN PENDAPATAN DAN BELANJA DAERAH",
		},
		FontFamily:  pdfdoc.DefaultFontFamily,
		SealWidthPx: 300,
	}
}

// LoadProfile reads a YAML profile from path. Missing keys keep their defaults;
// an empty path returns DefaultProfile.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if strings.TrimSpace(path) == "" {
		return profile, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read layout profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes YAML profile bytes over DefaultProfile.
func ParseProfile(data []byte) (Profile, error) {
	profile := DefaultProfile()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&profile); err != nil && !errors.Is(err, io.EOF) {
		return DefaultProfile(), fmt.Errorf("decode layout profile: %w", err)
	}
	profile.Region = strings.ToUpper(strings.TrimSpace(profile.Region))
	profile.Head = strings.ToUpper(strings.TrimSpace(profile.Head))
	if profile.Head == "" {
		profile.Head = DefaultProfile().Head
	}
	if len(profile.Subject) == 0 {
		profile.Subject = DefaultProfile().Subject
	}
	if profile.SealWidthPx <= 0 {
		profile.SealWidthPx = DefaultProfile().SealWidthPx
	}
	return profile, nil
}

// Heading is the legal heading of kind, e.g. "RANCANGAN PERATURAN DAERAH KABUPATEN X".
func (p Profile) Heading(kind models.ReportKind) string {
	var base string
	switch kind {
	case models.ReportKindRaperda:
		base = "RANCANGAN PERATURAN DAERAH"
	case models.ReportKindPerda:
		base = "PERATURAN DAERAH"
	case models.ReportKindRaperbup:
		base = "RANCANGAN PERATURAN " + p.Head
	case models.ReportKindPerbup:
		base = "PERATURAN " + p.Head
	default:
		base = "PERATURAN DAERAH"
	}
	return joinNonEmpty(base, p.Region)
}

// Role is the signing official printed on top of the cover.
func (p Profile) Role() string {
	return joinNonEmpty(p.Head, p.Region)
}

// IssuingBody is the government printed at the foot of the cover.
func (p Profile) IssuingBody() string {
	return joinNonEmpty("PEMERINTAH", p.Region)
}

// SubjectLines is the subject boilerplate below TENTANG. Regulations of the head of
// region elaborate the regional regulation and are prefixed with PENJABARAN.
func (p Profile) SubjectLines(kind models.ReportKind) []string {
	lines := make([]string, 0, len(p.Subject)+1)
	if !kind.IsRegionalRegulation() {
		lines = append(lines, "PENJABARAN")
	}
	return append(lines, p.Subject...)
}

// FiscalYear is the "TAHUN ANGGARAN" line.
func FiscalYear(year int) string {
	return fmt.Sprintf("TAHUN ANGGARAN %d", year)
}

// DecreeNumber is the unfilled decree number placeholder. Reports for fiscal year
// y are enacted in y+1.
func DecreeNumber(year int) string {
	return fmt.Sprintf("NOMOR ... TAHUN %d", year+1)
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}
