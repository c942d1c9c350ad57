package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func addOrder(store *orderStore, book *orderBook, price int64, trader string) *Order {
	o := &Order{
		Side:   book.side,
		Price:  decimal.NewFromInt(price),
		Volume: decimal.NewFromInt(1),
		Trader: trader,
		Status: OrderStatusOpen,
	}
	store.add(o)
	book.insert(o)
	return o
}

func walk(store *orderStore, book *orderBook) []*Order {
	var chain []*Order
	for cur := book.head; cur != 0; cur = store.get(cur).Next {
		chain = append(chain, store.get(cur))
	}
	return chain
}

func TestBidBookSortedDescending(t *testing.T) {
	store := newOrderStore()
	book := newOrderBook(SideBuy, store)

	for _, price := range []int64{100, 105, 95, 102} {
		addOrder(store, book, price, "T")
	}

	chain := walk(store, book)
	want := []int64{105, 102, 100, 95}
	if len(chain) != len(want) {
		t.Fatalf("expected %d orders, got %d", len(want), len(chain))
	}
	for i, price := range want {
		if !chain[i].Price.Equal(decimal.NewFromInt(price)) {
			t.Errorf("position %d: expected price %d, got %s", i, price, chain[i].Price)
		}
	}
	if book.head != chain[0].ID {
		t.Errorf("head %d is not the best bid %d", book.head, chain[0].ID)
	}
}

func TestAskBookSortedAscending(t *testing.T) {
	store := newOrderStore()
	book := newOrderBook(SideSell, store)

	for _, price := range []int64{100, 95, 105, 98} {
		addOrder(store, book, price, "T")
	}

	chain := walk(store, book)
	want := []int64{95, 98, 100, 105}
	for i, price := range want {
		if !chain[i].Price.Equal(decimal.NewFromInt(price)) {
			t.Errorf("position %d: expected price %d, got %s", i, price, chain[i].Price)
		}
	}
}

// Equal-price orders keep insertion order: a new order at an occupied level
// goes behind the existing ones.
func TestEqualPriceKeepsInsertionOrder(t *testing.T) {
	store := newOrderStore()
	book := newOrderBook(SideSell, store)

	first := addOrder(store, book, 100, "A")
	second := addOrder(store, book, 100, "B")
	third := addOrder(store, book, 100, "C")

	chain := walk(store, book)
	if len(chain) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(chain))
	}
	for i, want := range []*Order{first, second, third} {
		if chain[i].ID != want.ID {
			t.Errorf("position %d: expected order %d, got %d", i, want.ID, chain[i].ID)
		}
	}
}

func TestPopFrontAdvancesHead(t *testing.T) {
	store := newOrderStore()
	book := newOrderBook(SideSell, store)

	first := addOrder(store, book, 95, "A")
	second := addOrder(store, book, 100, "B")

	if book.peekFront().ID != first.ID {
		t.Fatalf("expected head %d, got %d", first.ID, book.peekFront().ID)
	}
	book.popFront()
	if book.peekFront().ID != second.ID {
		t.Errorf("expected head %d after pop, got %d", second.ID, book.peekFront().ID)
	}
	book.popFront()
	if book.peekFront() != nil {
		t.Error("expected empty book")
	}
}

func TestSkipDeadAdvancesPastCancelled(t *testing.T) {
	store := newOrderStore()
	book := newOrderBook(SideSell, store)

	first := addOrder(store, book, 95, "A")
	second := addOrder(store, book, 96, "B")
	live := addOrder(store, book, 97, "C")

	first.Status = OrderStatusCancelled
	first.Volume = decimal.Zero
	second.Status = OrderStatusCancelled
	second.Volume = decimal.Zero

	book.skipDead()
	if book.peekFront() == nil || book.peekFront().ID != live.ID {
		t.Errorf("expected head %d after skipping dead nodes, got %d", live.ID, book.head)
	}
}
