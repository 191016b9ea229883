package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes. Everything runits publishes or consumes lives under
// TopicPrefix.
const (
	TopicPrefix = "runits"

	TopicPrefixSystem   = TopicPrefix + "/system"
	TopicPrefixRequest  = TopicPrefix + "/request"
	TopicPrefixResponse = TopicPrefix + "/response"
	TopicPrefixEvent    = TopicPrefix + "/event"
)

// Topics provides builders for runits MQTT topics.
//
//	topics := mqtt.Topics{}
//	reply := topics.ConvertResponse("req-42")
//	// Returns: "runits/response/convert/req-42"
type Topics struct{}

// SystemStatus returns the retained online/offline status topic.
//
// Example: runits/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// ConvertRequest returns the topic a client publishes a conversion request on.
//
// Example: runits/request/convert/req-42
func (Topics) ConvertRequest(requestID string) string {
	return fmt.Sprintf("%s/convert/%s", TopicPrefixRequest, requestID)
}

// ConvertResponse returns the topic the reply to a conversion request is
// published on.
//
// Example: runits/response/convert/req-42
func (Topics) ConvertResponse(requestID string) string {
	return fmt.Sprintf("%s/convert/%s", TopicPrefixResponse, requestID)
}

// RegistryEvent returns the topic registry lifecycle events are published on.
//
// Example: runits/event/registry
func (Topics) RegistryEvent() string {
	return TopicPrefixEvent + "/registry"
}

// AllConvertRequests matches every conversion request.
//
// Pattern: runits/request/convert/+
func (Topics) AllConvertRequests() string {
	return TopicPrefixRequest + "/convert/+"
}

// AllTopics matches all runits traffic.
//
// Pattern: runits/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}

// RequestID extracts the trailing request id from a request or response
// topic. It returns false when the topic has no non-empty last segment.
func (Topics) RequestID(topic string) (string, bool) {
	i := strings.LastIndexByte(topic, '/')
	if i < 0 || i == len(topic)-1 {
		return "", false
	}
	return topic[i+1:], true
}
