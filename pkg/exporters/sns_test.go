package exporters

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
)

type fakeSNSClient struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func TestSNSExporterPublishesPerRecord(t *testing.T) {
	client := &fakeSNSClient{}
	exp := &snsExporter{
		id:       "topic-1",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:us-east-1:1:articles",
		client:   client,
		log:      noopLogger{},
	}

	records := []domain.ArticleRecord{
		{ArticleURL: "https://news.google.com/articles/t1", Title: "One"},
	}
	if err := exp.Export(context.Background(), records); err != nil {
		t.Fatalf("Export: %v", err)
	}

	if len(client.inputs) != 1 {
		t.Fatalf("publishes = %d, want 1", len(client.inputs))
	}
	input := client.inputs[0]
	if got := aws.ToString(input.TopicArn); got != "arn:aws:sns:us-east-1:1:articles" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr, ok := input.MessageAttributes["article_url"]
	if !ok || aws.ToString(attr.StringValue) != "https://news.google.com/articles/t1" {
		t.Fatalf("article_url attribute missing or wrong: %#v", attr)
	}
	if !strings.Contains(aws.ToString(input.Message), `"title":"One"`) {
		t.Fatalf("Message missing title: %s", aws.ToString(input.Message))
	}
}

func TestSNSExporterPublishError(t *testing.T) {
	exp := &snsExporter{
		id:       "topic-1",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:us-east-1:1:articles",
		client:   &fakeSNSClient{err: errors.New("denied")},
		log:      noopLogger{},
	}

	err := exp.Export(context.Background(), []domain.ArticleRecord{{Title: "X"}})
	if err == nil || !strings.Contains(err.Error(), "denied") {
		t.Fatalf("expected publish error, got %v", err)
	}
}
