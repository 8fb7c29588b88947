package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stresscheck-go/internal/config"

	"go.uber.org/zap"
)

// Notification categories, carried on outbound payloads so receiving
// channels can route on them.
const (
	CategoryHighStressAlert    = "high_stress_alert"
	CategorySystemNotification = "system_notification"
)

// NotificationPayload is the platform-neutral message handed to a Notifier.
// UrgencyLevel runs 1 (lowest) to 5 (highest).
type NotificationPayload struct {
	Category     string
	Title        string
	Message      string
	Department   string
	UrgencyLevel int
	Timestamp    time.Time
}

// Notifier delivers a notification to the configured outbound channels.
// Implementations must not block indefinitely; delivery is best-effort.
type Notifier interface {
	Send(ctx context.Context, payload NotificationPayload) error
}

var urgencyLabels = [5]string{"low", "moderately low", "medium", "moderately high", "high"}

func urgencyLabel(level int) string {
	if level < 1 || level > len(urgencyLabels) {
		return "medium"
	}
	return urgencyLabels[level-1]
}

// WebhookNotifier posts alerts to Slack (Block Kit) and Microsoft Teams
// (MessageCard) incoming webhooks. Either URL may be empty; a channel with
// no URL is skipped silently.
type WebhookNotifier struct {
	log    *zap.Logger
	client *http.Client
}

func NewWebhookNotifier(log *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		log:    log,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Send delivers the payload to every configured channel. A channel failure
// is logged and reported but never stops the other channels.
func (n *WebhookNotifier) Send(ctx context.Context, payload NotificationPayload) error {
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now().UTC()
	}

	var firstErr error
	if url := config.Conf.Notifications.SlackWebhookURL; url != "" {
		if err := n.post(ctx, "slack", url, payload.Title, n.slackPayload(payload)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if url := config.Conf.Notifications.TeamsWebhookURL; url != "" {
		if err := n.post(ctx, "teams", url, payload.Title, n.teamsPayload(payload)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *WebhookNotifier) post(ctx context.Context, channel, url, title string, body map[string]interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error("Webhook delivery failed", zap.String("channel", channel), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		n.log.Error("Webhook rejected notification",
			zap.String("channel", channel),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return fmt.Errorf("%s webhook returned status %d", channel, resp.StatusCode)
	}

	n.log.Info("Notification delivered", zap.String("channel", channel), zap.String("title", title))
	return nil
}

var slackUrgencyColors = map[int]string{
	1: "#36a64f",
	2: "#2196F3",
	3: "#FFC107",
	4: "#FF9800",
	5: "#F44336",
}

var slackCategoryEmoji = map[string]string{
	CategoryHighStressAlert:    ":warning:",
	CategorySystemNotification: ":bell:",
}

func (n *WebhookNotifier) slackPayload(payload NotificationPayload) map[string]interface{} {
	emoji, ok := slackCategoryEmoji[payload.Category]
	if !ok {
		emoji = ":bell:"
	}
	color, ok := slackUrgencyColors[payload.UrgencyLevel]
	if !ok {
		color = "#808080"
	}

	blocks := []map[string]interface{}{
		{
			"type": "header",
			"text": map[string]interface{}{
				"type":  "plain_text",
				"text":  fmt.Sprintf("%s %s", emoji, payload.Title),
				"emoji": true,
			},
		},
		{
			"type": "section",
			"text": map[string]interface{}{
				"type": "mrkdwn",
				"text": payload.Message,
			},
		},
	}

	var fields []map[string]interface{}
	if payload.Department != "" {
		fields = append(fields, map[string]interface{}{
			"type": "mrkdwn",
			"text": "*Department:*\n" + payload.Department,
		})
	}
	if payload.UrgencyLevel > 0 {
		fields = append(fields, map[string]interface{}{
			"type": "mrkdwn",
			"text": "*Urgency:*\n" + urgencyLabel(payload.UrgencyLevel),
		})
	}
	if len(fields) > 0 {
		blocks = append(blocks, map[string]interface{}{
			"type":   "section",
			"fields": fields,
		})
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "context",
		"elements": []map[string]interface{}{
			{
				"type": "mrkdwn",
				"text": "Sent at: " + payload.Timestamp.Format("2006-01-02 15:04:05") + " UTC",
			},
		},
	})

	return map[string]interface{}{
		"blocks": blocks,
		"attachments": []map[string]interface{}{
			{
				"color":    color,
				"fallback": payload.Title + ": " + payload.Message,
			},
		},
	}
}

var teamsUrgencyColors = map[int]string{
	1: "00FF00",
	2: "0078D4",
	3: "FFC107",
	4: "FF9800",
	5: "FF0000",
}

func (n *WebhookNotifier) teamsPayload(payload NotificationPayload) map[string]interface{} {
	themeColor, ok := teamsUrgencyColors[payload.UrgencyLevel]
	if !ok {
		themeColor = "0078D4"
	}

	var facts []map[string]interface{}
	if payload.Department != "" {
		facts = append(facts, map[string]interface{}{
			"title": "Department",
			"value": payload.Department,
		})
	}
	if payload.UrgencyLevel > 0 {
		facts = append(facts, map[string]interface{}{
			"title": "Urgency",
			"value": urgencyLabel(payload.UrgencyLevel),
		})
	}
	facts = append(facts, map[string]interface{}{
		"title": "Sent at",
		"value": payload.Timestamp.Format("2006-01-02 15:04:05") + " UTC",
	})

	return map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": themeColor,
		"summary":    payload.Title,
		"sections": []map[string]interface{}{
			{
				"activityTitle":    payload.Title,
				"activitySubtitle": payload.Category,
				"facts":            facts,
				"text":             payload.Message,
				"markdown":         true,
			},
		},
	}
}
