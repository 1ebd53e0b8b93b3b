package core

import (
	"io/fs"
	"net/mail"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/trezcool/peereval/fs"
)

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{"_base.txt", "_base.gohtml", "auth_code.txt", "auth_code.gohtml"} {
		_, err := fs.Stat(appfs.FS, path.Join(emailTemplatesDir, name))
		assert.NoError(t, err, name)
	}
}

func TestParseEmailTemplates(t *testing.T) {
	require.NoError(t, ParseEmailTemplates())

	entry, ok := templates["auth_code"]
	require.True(t, ok)
	assert.Contains(t, entry, ".txt")
	assert.Contains(t, entry, ".gohtml")
	assert.NotContains(t, templates, "_base")
}

func TestEmailMessage_Render(t *testing.T) {
	msg := &EmailMessage{
		To:           []mail.Address{{Address: "ada@test.ca"}},
		Subject:      "Your login code",
		TemplateName: "auth_code",
		TemplateData: map[string]interface{}{
			"Name":      "Ada Lovelace",
			"Code":      "123456",
			"ValidFor":  "1 hour",
			"ExpiresAt": "2021-03-01 10:00:00",
		},
	}
	require.NoError(t, msg.Render("Peer Evaluation"))

	assert.True(t, msg.HasContent())
	assert.Contains(t, msg.TextContent, "Your login code is: 123456")
	assert.Contains(t, msg.TextContent, "Peer Evaluation") // from the base layout
	assert.Contains(t, msg.HTMLContent, "123456")

	t.Run("plain body", func(t *testing.T) {
		msg := &EmailMessage{BodyStr: "hello"}
		require.NoError(t, msg.Render("Peer Evaluation"))
		assert.Equal(t, "hello", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
	})
}
