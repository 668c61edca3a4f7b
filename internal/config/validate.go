package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	if err := c.validatePush(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if base := c.Paths.RecordBaseURL; base != "" {
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			return fmt.Errorf("paths.record_base_url must be an http(s) URL, got %q", base)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if strings.TrimSpace(c.Workflow.DefaultStateField) == "" {
		return errors.New("workflow.default_state_field must be set")
	}
	if strings.TrimSpace(c.Workflow.FallbackStateField) == "" {
		return errors.New("workflow.fallback_state_field must be set")
	}
	return nil
}

func (c *Config) validateEmail() error {
	if !c.Email.Enabled {
		return nil
	}
	if c.Email.SMTPHost == "" {
		return errors.New("email.smtp_host must be set when email.enabled is true")
	}
	if c.Email.From == "" {
		return errors.New("email.from must be set when email.enabled is true")
	}
	if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
		return fmt.Errorf("email.smtp_port out of range: %d", c.Email.SMTPPort)
	}
	return nil
}

func (c *Config) validatePush() error {
	if c.Push.Topic == "" {
		return nil
	}
	if !strings.HasPrefix(c.Push.Topic, "http://") && !strings.HasPrefix(c.Push.Topic, "https://") {
		return fmt.Errorf("push.topic must be a full topic URL, got %q", c.Push.Topic)
	}
	return nil
}
