package producer

import "time"

type Option func(*Producer)

func ConnAttempts(attempts int) Option {
	return func(p *Producer) {
		p.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(p *Producer) {
		p.connTimeout = timeout
	}
}

func WriteTimeout(timeout time.Duration) Option {
	return func(p *Producer) {
		p.writeTimeout = timeout
	}
}

func BatchTimeout(timeout time.Duration) Option {
	return func(p *Producer) {
		p.batchTimeout = timeout
	}
}

// MaxAttempts limits how many times the writer retries a batch before failing it.
func MaxAttempts(attempts int) Option {
	return func(p *Producer) {
		p.maxAttempts = attempts
	}
}

// ReplicationFactor is used when EnsureTopic has to create the topic.
func ReplicationFactor(n int) Option {
	return func(p *Producer) {
		p.replicationFactor = n
	}
}
