package core

import (
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/NAA-del/naa-portal/assets"
)

func TestMain(m *testing.M) {
	os.Setenv("ENV", "TEST")
	LoadConfig("")
	os.Exit(m.Run())
}

// The base layouts start with an underscore, which a plain embed pattern
// would skip; every templated mail depends on them being in the binary.
func TestEmailTemplatesEmbedded(t *testing.T) {
	for _, name := range []string{"_base.txt", "_base.gohtml"} {
		if _, err := fs.Stat(assets.FS, emailTemplateDir+"/"+name); err != nil {
			t.Errorf("%s missing from embedded assets: %v", name, err)
		}
	}

	parseTemplates()
	for _, name := range []string{"welcome", "member-verified", "password-reset"} {
		entry, ok := templates[name]
		if !ok {
			t.Errorf("template %q not parsed", name)
			continue
		}
		for _, ext := range []string{".txt", ".gohtml"} {
			if _, ok := entry[ext]; !ok {
				t.Errorf("template %q missing %s variant", name, ext)
			}
		}
	}
}

func TestEmailMessage_Render(t *testing.T) {
	msg := &EmailMessage{
		Subject:      "Welcome to the Academy",
		TemplateName: "welcome",
		TemplateData: struct {
			Username, Tier string
		}{"awele", "student"},
	}
	if err := msg.Render(); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if !strings.Contains(msg.TextContent, "Hi awele") {
		t.Errorf("TextContent missing greeting; got %q", msg.TextContent)
	}
	if !strings.Contains(msg.TextContent, Conf.FrontendBaseURL) {
		t.Error("TextContent missing frontend URL")
	}
	if msg.HTMLContent == "" {
		t.Error("HTMLContent not rendered")
	}
}
