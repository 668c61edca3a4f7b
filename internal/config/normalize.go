package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeWorkflow(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeEmail()
	c.normalizePush()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.RecordBaseURL = strings.TrimRight(strings.TrimSpace(c.Paths.RecordBaseURL), "/")
	return nil
}

func (c *Config) normalizeWorkflow() error {
	var err error
	c.Workflow.DefinitionsPath = strings.TrimSpace(c.Workflow.DefinitionsPath)
	if c.Workflow.DefinitionsPath == "" {
		c.Workflow.DefinitionsPath = defaultDefinitionsPath
	}
	if c.Workflow.DefinitionsPath, err = expandPath(c.Workflow.DefinitionsPath); err != nil {
		return fmt.Errorf("workflow.definitions_path: %w", err)
	}
	c.Workflow.DefaultStateField = strings.TrimSpace(c.Workflow.DefaultStateField)
	if c.Workflow.DefaultStateField == "" {
		c.Workflow.DefaultStateField = defaultDefaultStateField
	}
	c.Workflow.FallbackStateField = strings.TrimSpace(c.Workflow.FallbackStateField)
	if c.Workflow.FallbackStateField == "" {
		c.Workflow.FallbackStateField = defaultFallbackStateField
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.BroadRoles = cleanList(c.Notifications.BroadRoles, defaultBroadRoles())
	c.Notifications.EmployeeLinkFields = cleanList(c.Notifications.EmployeeLinkFields, defaultEmployeeLinkFields())
}

func (c *Config) normalizeEmail() {
	c.Email.SMTPHost = strings.TrimSpace(c.Email.SMTPHost)
	c.Email.Username = strings.TrimSpace(c.Email.Username)
	c.Email.From = strings.TrimSpace(c.Email.From)
	if c.Email.Password == "" {
		if value, ok := os.LookupEnv("STATEWATCH_SMTP_PASSWORD"); ok {
			c.Email.Password = value
		}
	}
	if c.Email.SMTPPort <= 0 {
		c.Email.SMTPPort = defaultSMTPPort
	}
	if c.Email.RequestTimeout <= 0 {
		c.Email.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizePush() {
	c.Push.Topic = strings.TrimSpace(c.Push.Topic)
	if c.Push.RequestTimeout <= 0 {
		c.Push.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func cleanList(values, fallback []string) []string {
	cleaned := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return fallback
	}
	return cleaned
}
