package mq

const (
	TopicPersistence = "chat_persist_topic"
	TagSaveMessage   = "save_message"
	TagSaveUsageLog  = "save_usage_log"
)
