package wireframe

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DatasetSummary describes one processed dataset for the combined summary
// topic.
type DatasetSummary struct {
	Dataset   string  `json:"dataset"`
	Polygons  int     `json:"polygons"`
	TotalArea float64 `json:"totalArea"`
	Timestamp int64   `json:"timestamp"`
}

// Publisher pushes polygonalization results to MQTT so downstream consumers
// pick up new roof faces as datasets are processed.
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	summaries     map[string]*DatasetSummary
	mu            sync.RWMutex
}

// NewPublisher creates a result publisher. If client is nil, publishing is
// disabled (for testing).
func NewPublisher(client mqtt.Client, publishPrefix string) *Publisher {
	if publishPrefix == "" {
		publishPrefix = "polygonalize"
	}

	return &Publisher{
		client:        client,
		publishPrefix: publishPrefix,
		qos:           1,    // results should arrive at least once
		retain:        true, // retain the latest result per dataset
		summaries:     make(map[string]*DatasetSummary),
	}
}

// Connect builds an MQTT client from the config and waits for the initial
// connection.
func Connect(config *MQTTConfig) (mqtt.Client, error) {
	options := mqtt.NewClientOptions().AddBroker(config.Broker)
	if config.ClientID != "" {
		options.SetClientID(config.ClientID)
	}
	if config.Username != "" {
		options.SetUsername(config.Username)
		options.SetPassword(config.Password)
	}
	options.SetConnectTimeout(10 * time.Second)
	options.SetAutoReconnect(true)

	client := mqtt.NewClient(options)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("MQTT connection timeout for %s", config.Broker)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", config.Broker, token.Error())
	}
	return client, nil
}

// PublishResult publishes a dataset's polygon collection to its individual
// topic and refreshes the combined summary topic.
func (p *Publisher) PublishResult(dataset *Dataset, polygons []*Polygon) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	total := 0.0
	for _, polygon := range polygons {
		total += FootprintArea(polygon)
	}

	summary := &DatasetSummary{
		Dataset:   dataset.Name,
		Polygons:  len(polygons),
		TotalArea: total,
		Timestamp: time.Now().Unix(),
	}

	p.mu.Lock()
	p.summaries[dataset.Name] = summary
	p.mu.Unlock()

	if err := p.publishCollection(dataset, polygons); err != nil {
		log.Printf("Error publishing polygons for %s: %v", dataset.Name, err)
		return err
	}

	if err := p.publishSummary(); err != nil {
		log.Printf("Error publishing summary: %v", err)
		return err
	}

	return nil
}

// publishCollection publishes one dataset's result to its individual topic.
func (p *Publisher) publishCollection(dataset *Dataset, polygons []*Polygon) error {
	topic := fmt.Sprintf("%s/%s", p.publishPrefix, dataset.Name)

	payload, err := json.Marshal(dataset.ResultCollection(polygons))
	if err != nil {
		return fmt.Errorf("marshaling polygons: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	log.Printf("Published %d polygons for %s", len(polygons), dataset.Name)
	return nil
}

// publishSummary publishes the per-dataset summaries to the combined topic.
func (p *Publisher) publishSummary() error {
	p.mu.RLock()
	summaries := make([]*DatasetSummary, 0, len(p.summaries))
	for _, summary := range p.summaries {
		summaries = append(summaries, summary)
	}
	p.mu.RUnlock()

	if len(summaries) == 0 {
		return nil
	}

	topic := fmt.Sprintf("%s/summary", p.publishPrefix)

	message := map[string]interface{}{
		"datasets":  summaries,
		"timestamp": time.Now().Unix(),
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// GetSummary returns the last published summary for a dataset.
func (p *Publisher) GetSummary(dataset string) (*DatasetSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	summary, ok := p.summaries[dataset]
	return summary, ok
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
