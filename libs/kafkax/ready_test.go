package kafkax

import (
	"context"
	"testing"
)

func TestReadyCheckPassesWithoutBrokers(t *testing.T) {
	for _, brokers := range []string{"", "  ", " , "} {
		if err := ReadyCheck(brokers)(context.Background()); err != nil {
			t.Fatalf("ReadyCheck(%q) = %v, want nil", brokers, err)
		}
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, kafka-2:9092 ,,")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("SplitBrokers = %v", got)
	}
}
