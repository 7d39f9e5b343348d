package rules

import (
	"regexp"

	"github.com/nself-org/secretscan/pkg/model"
)

// builtinDef is the compact table form of a built-in rule. Entries are
// converted to Rule values by builtinRules.
type builtinDef struct {
	id         string
	name       string
	category   model.Category
	pattern    string
	severity   model.Severity
	confidence model.Confidence
	minLen     int
	maxLen     int
	multiline  bool
	testMarker string
}

var builtinDefs = []builtinDef{
	// Cloud providers
	{
		id: "aws-access-key", name: "AWS Access Key ID",
		category: model.CategoryCredentialProvider,
		pattern:  `\b((?:AKIA|ASIA|ABIA|ACCA)[A-Z0-9]{16})\b`,
		severity: model.SevCritical, confidence: model.ConfidenceHigh,
		minLen: 20, maxLen: 20,
	},
	{
		id: "aws-secret-key", name: "AWS Secret Access Key",
		category: model.CategoryCredentialProvider,
		pattern:  `(?i)aws_secret_access_key\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`,
		severity: model.SevCritical, confidence: model.ConfidenceHigh,
	},
	{
		id: "gcp-api-key", name: "GCP API Key",
		category: model.CategoryCredentialProvider,
		pattern:  `\bAIza[0-9A-Za-z\-_]{35}\b`,
		severity: model.SevHigh, confidence: model.ConfidenceHigh,
		minLen: 39, maxLen: 39,
	},

	// Source control personal access tokens
	{
		id: "github-pat", name: "GitHub Personal Access Token",
		category: model.CategoryCredentialProvider,
		pattern:  `\bgh[pousr]_[A-Za-z0-9]{36}\b`,
		severity: model.SevCritical, confidence: model.ConfidenceHigh,
		minLen: 40, maxLen: 40,
	},
	{
		id: "github-fine-grained-pat", name: "GitHub Fine-Grained Personal Access Token",
		category: model.CategoryCredentialProvider,
		pattern:  `\bgithub_pat_[A-Za-z0-9_]{82}\b`,
		severity: model.SevCritical, confidence: model.ConfidenceHigh,
	},
	{
		id: "gitlab-pat", name: "GitLab Personal Access Token",
		category: model.CategoryCredentialProvider,
		pattern:  `\bglpat-[A-Za-z0-9\-_]{20,}\b`,
		severity: model.SevHigh, confidence: model.ConfidenceHigh,
	},

	// Payment processors
	{
		id: "stripe-secret-key", name: "Stripe Secret Key",
		category: model.CategoryCredentialProvider,
		pattern:  `\bsk_(?:live|test)_[A-Za-z0-9]{24,}\b`,
		severity: model.SevCritical, confidence: model.ConfidenceHigh,
		testMarker: `^sk_test_`,
	},
	{
		id: "stripe-publishable-key", name: "Stripe Publishable Key",
		category: model.CategoryCredentialProvider,
		pattern:  `\bpk_(?:live|test)_[A-Za-z0-9]{24,}\b`,
		severity: model.SevLow, confidence: model.ConfidenceHigh,
		testMarker: `^pk_test_`,
	},
	{
		id: "stripe-webhook-secret", name: "Stripe Webhook Signing Secret",
		category: model.CategoryCredentialProvider,
		pattern:  `\bwhsec_[A-Za-z0-9+/=]{32,}\b`,
		severity: model.SevHigh, confidence: model.ConfidenceHigh,
	},

	// SaaS tokens
	{
		id: "sendgrid-api-key", name: "SendGrid API Key",
		category: model.CategoryCredentialProvider,
		pattern:  `\bSG\.[A-Za-z0-9_\-]{22}\.[A-Za-z0-9_\-]{43}\b`,
		severity: model.SevHigh, confidence: model.ConfidenceHigh,
	},
	{
		id: "slack-token", name: "Slack Token",
		category: model.CategoryCredentialProvider,
		pattern:  `\bxox[baprs]-[0-9]{10,13}-[0-9]{10,24}-[a-zA-Z0-9\-_]{24,34}\b`,
		severity: model.SevCritical, confidence: model.ConfidenceHigh,
	},
	{
		id: "openai-api-key", name: "OpenAI Project API Key",
		category: model.CategoryCredentialProvider,
		pattern:  `\bsk-proj-[A-Za-z0-9_-]{48,}\b`,
		severity: model.SevHigh, confidence: model.ConfidenceHigh,
	},
	{
		id: "anthropic-api-key", name: "Anthropic API Key",
		category: model.CategoryCredentialProvider,
		pattern:  `\bsk-ant-api[A-Za-z0-9_-]{24,}\b`,
		severity: model.SevHigh, confidence: model.ConfidenceHigh,
	},

	// Webhook URLs with embedded tokens
	{
		id: "slack-webhook-url", name: "Slack Webhook URL",
		category: model.CategoryWebhook,
		pattern:  `https://hooks\.slack\.com/services/T[A-Z0-9]{8,}/B[A-Z0-9]{8,}/[A-Za-z0-9]{24,}`,
		severity: model.SevHigh, confidence: model.ConfidenceHigh,
	},
	{
		id: "discord-webhook-url", name: "Discord Webhook URL",
		category: model.CategoryWebhook,
		pattern:  `https://discord(?:app)?\.com/api/webhooks/[0-9]+/[A-Za-z0-9_\-]{20,}`,
		severity: model.SevHigh, confidence: model.ConfidenceHigh,
	},

	// Key material
	{
		id: "private-key-block", name: "PEM Private Key Block",
		category: model.CategoryKeyMaterial,
		pattern:  `-----BEGIN[ A-Z0-9_-]{0,100}PRIVATE KEY-----`,
		severity: model.SevCritical, confidence: model.ConfidenceHigh,
		multiline: true,
	},
	{
		id: "jwt-token", name: "JSON Web Token",
		category: model.CategoryKeyMaterial,
		pattern:  `\beyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`,
		severity: model.SevMedium, confidence: model.ConfidenceMedium,
	},

	// Connection strings with inline credentials
	{
		id: "db-connection-string", name: "Database Connection String with Credentials",
		category: model.CategoryConnectionString,
		pattern:  `(?i)\b(?:mysql|postgres(?:ql)?|mariadb|mongodb(?:\+srv)?|mssql|redis|rediss|amqp)://[^:/\s"']+:([^@\s"']+)@[^\s"']+`,
		severity: model.SevCritical, confidence: model.ConfidenceHigh,
	},
	{
		id: "url-basic-auth", name: "URL with Embedded Password",
		category: model.CategoryConnectionString,
		pattern:  `\bhttps?://[^:/\s"']+:([^@\s"']+)@[^\s"']{3,}`,
		severity: model.SevHigh, confidence: model.ConfidenceMedium,
	},

	// Generic assignments
	{
		id: "generic-api-key", name: "Generic API Key Assignment",
		category: model.CategoryCredentialProvider,
		pattern:  `(?i)(?:api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']([A-Za-z0-9\-_]{16,})["']`,
		severity: model.SevMedium, confidence: model.ConfidenceMedium,
	},
	{
		id: "generic-password", name: "Generic Password Assignment",
		category: model.CategoryCredentialProvider,
		pattern:  `(?i)(?:password|passwd|pwd)\s*[:=]\s*["']([^"']{8,})["']`,
		severity: model.SevMedium, confidence: model.ConfidenceLow,
	},
}

func builtinRules() []Rule {
	out := make([]Rule, 0, len(builtinDefs))
	for _, d := range builtinDefs {
		r := Rule{
			ID:             d.id,
			Name:           d.name,
			Category:       d.category,
			Pattern:        regexp.MustCompile(d.pattern),
			BaseSeverity:   d.severity,
			Confidence:     d.confidence,
			MinMatchLength: d.minLen,
			MaxMatchLength: d.maxLen,
			Multiline:      d.multiline,
		}
		if d.testMarker != "" {
			r.TestMarker = regexp.MustCompile(d.testMarker)
		}
		out = append(out, r)
	}
	return out
}
