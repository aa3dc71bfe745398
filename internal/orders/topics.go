package orders

const (
	TopicOrderSettled = "order.settled"
)

// Partition key = order_ref so events for one order keep their order.
func PartitionKey(orderRef string) []byte { return []byte(orderRef) }
