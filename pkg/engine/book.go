package engine

// orderBook is a singly linked, strictly price-sorted view over the order
// store. Only the head is ever mutated by matching; cancelled non-head
// orders stay linked with status Cancelled until the head walks past them.
type orderBook struct {
	side  Side
	head  uint64
	store *orderStore
}

func newOrderBook(side Side, store *orderStore) *orderBook {
	return &orderBook{
		side:  side,
		store: store,
	}
}

// insert splices o in front of the first node whose price is not better
// than o's. Equal-price nodes are walked past, so time priority within a
// price level is insertion order.
func (b *orderBook) insert(o *Order) {
	var prev *Order
	cur := b.head
	for cur != 0 {
		node := b.store.get(cur)
		if !b.sortsBefore(node, o) {
			break
		}
		prev = node
		cur = node.Next
	}

	o.Next = cur
	if prev == nil {
		b.head = o.ID
	} else {
		prev.Next = o.ID
	}
}

func (b *orderBook) sortsBefore(node, o *Order) bool {
	if b.side == SideBuy {
		return node.Price.GreaterThanOrEqual(o.Price)
	}
	return node.Price.LessThanOrEqual(o.Price)
}

func (b *orderBook) peekFront() *Order {
	if b.head == 0 {
		return nil
	}
	return b.store.get(b.head)
}

// popFront advances the head past a fully consumed order.
func (b *orderBook) popFront() {
	if b.head == 0 {
		return
	}
	b.head = b.store.get(b.head).Next
}

// skipDead advances the head past cancelled nodes so a dead order can never
// stall matching while live liquidity sits behind it.
func (b *orderBook) skipDead() {
	for b.head != 0 && b.store.get(b.head).Status != OrderStatusOpen {
		b.head = b.store.get(b.head).Next
	}
}
