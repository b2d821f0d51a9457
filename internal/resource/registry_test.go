package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/config"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

func topic(id string) model.ResourceIdentifier {
	return model.ResourceIdentifier{Type: model.ResourceTypeTopic, ID: ids.MustResourceID(id)}
}

func stream(id string) model.ResourceIdentifier {
	return model.ResourceIdentifier{Type: model.ResourceTypeStream, ID: ids.MustResourceID(id)}
}

func TestStaticRegistry(t *testing.T) {
	r := NewStaticRegistry(
		map[string]string{"events": "scratch.events.greenbox-dev"},
		map[string]string{"weather": "stream.weather.greenbox-dev"},
	)

	tests := []struct {
		name string
		id   model.ResourceIdentifier
		want string
		ok   bool
	}{
		{name: "topic", id: topic("events"), want: "scratch.events.greenbox-dev", ok: true},
		{name: "stream", id: stream("weather"), want: "stream.weather.greenbox-dev", ok: true},
		{name: "topic id looked up as stream", id: stream("events")},
		{name: "unknown", id: topic("unknown")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.ResolveTopic(tt.id)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopicNamingRegistry(t *testing.T) {
	r := TopicNamingRegistry{Tenant: "greenbox-dev"}
	got, ok := r.ResolveTopic(topic("events"))
	assert.True(t, ok)
	assert.Equal(t, "scratch.events.greenbox-dev", got)

	got, ok = r.ResolveTopic(stream("weather"))
	assert.True(t, ok)
	assert.Equal(t, "stream.weather.greenbox-dev", got)

	_, ok = TopicNamingRegistry{}.ResolveTopic(topic("events"))
	assert.False(t, ok)
}

func TestChain(t *testing.T) {
	r := Chain(nil, NewStaticRegistry(map[string]string{"events": "custom.events"}, nil), TopicNamingRegistry{Tenant: "t"})

	got, ok := r.ResolveTopic(topic("events"))
	assert.True(t, ok)
	assert.Equal(t, "custom.events", got)

	got, ok = r.ResolveTopic(topic("other"))
	assert.True(t, ok)
	assert.Equal(t, "scratch.other.t", got)

	_, ok = Chain().ResolveTopic(topic("events"))
	assert.False(t, ok)
}

func TestFromSettings(t *testing.T) {
	settings := &config.Settings{
		Target:    config.Target{Tenant: "greenbox-dev"},
		Resources: config.ResourcesConfig{Topics: map[string]string{"events": "custom.events"}},
	}
	_, ok := FromSettings(settings).ResolveTopic(topic("other"))
	assert.False(t, ok)

	settings.Resources.Naming = true
	got, ok := FromSettings(settings).ResolveTopic(topic("other"))
	assert.True(t, ok)
	assert.Equal(t, "scratch.other.greenbox-dev", got)
}
