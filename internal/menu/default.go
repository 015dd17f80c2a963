package menu

// Default returns the built-in cafe catalog used when no catalog file is
// configured. Prices are in KRW.
func Default() *Catalog {
	both := []Temperature{Hot, Ice}
	iceOnly := []Temperature{Ice}
	hotOnly := []Temperature{Hot}

	c, err := New([]Item{
		// Coffee
		{ID: "americano", Name: "아메리카노", EnglishName: "Americano", Category: "coffee", Price: 4500, Temperatures: both, Available: true},
		{ID: "cafe-latte", Name: "카페라떼", EnglishName: "Cafe Latte", Category: "coffee", Price: 5000, Temperatures: both, Available: true},
		{ID: "vanilla-latte", Name: "바닐라라떼", EnglishName: "Vanilla Latte", Category: "coffee", Price: 5500, Temperatures: both, Available: true},
		{ID: "caramel-macchiato", Name: "카라멜 마키아토", EnglishName: "Caramel Macchiato", Category: "coffee", Price: 5500, Temperatures: both, Available: true},
		{ID: "hazelnut-latte", Name: "헤이즐넛라떼", EnglishName: "Hazelnut Latte", Category: "coffee", Price: 5500, Temperatures: both, Available: true},
		{ID: "cold-brew", Name: "콜드브루", EnglishName: "Cold Brew", Category: "coffee", Price: 5000, Temperatures: iceOnly, Available: true},
		{ID: "espresso", Name: "에스프레소", EnglishName: "Espresso", Category: "coffee", Price: 3500, Temperatures: hotOnly, Available: true},
		{ID: "cappuccino", Name: "카푸치노", EnglishName: "Cappuccino", Category: "coffee", Price: 5000, Temperatures: hotOnly, Available: true},

		// Non-coffee
		{ID: "green-tea-latte", Name: "녹차라떼", EnglishName: "Green Tea Latte", Category: "non-coffee", Price: 5500, Temperatures: both, Available: true},
		{ID: "chocolate-latte", Name: "초코라떼", EnglishName: "Chocolate Latte", Category: "non-coffee", Price: 5500, Temperatures: both, Available: true},
		{ID: "matcha-latte", Name: "말차라떼", EnglishName: "Matcha Latte", Category: "non-coffee", Price: 6000, Temperatures: both, Available: true},
		{ID: "milk-tea", Name: "밀크티", EnglishName: "Milk Tea", Category: "non-coffee", Price: 5000, Temperatures: both, Available: true},
		{ID: "strawberry-latte", Name: "딸기라떼", EnglishName: "Strawberry Latte", Category: "non-coffee", Price: 6000, Temperatures: iceOnly, Available: true},
		{ID: "orange-juice", Name: "오렌지주스", EnglishName: "Orange Juice", Category: "non-coffee", Price: 5500, Temperatures: iceOnly, Available: true},

		// Dessert — no serving temperature.
		{ID: "croissant", Name: "크루아상", EnglishName: "Croissant", Category: "dessert", Price: 4000, Available: true},
		{ID: "chocolate-cake", Name: "초코케이크", EnglishName: "Chocolate Cake", Category: "dessert", Price: 6500, Available: true},
		{ID: "cheesecake", Name: "치즈케이크", EnglishName: "Cheesecake", Category: "dessert", Price: 6500, Available: true},
		{ID: "tiramisu", Name: "티라미수", EnglishName: "Tiramisu", Category: "dessert", Price: 7000, Available: true},

		// Seasonal
		{ID: "pumpkin-latte", Name: "펌킨라떼", EnglishName: "Pumpkin Latte", Category: "seasonal", Price: 6500, Temperatures: both, Available: true},
		{ID: "strawberry-ade", Name: "딸기에이드", EnglishName: "Strawberry Ade", Category: "seasonal", Price: 6000, Temperatures: iceOnly, Available: true},
	})
	if err != nil {
		// The built-in catalog is validated by tests; reaching this is a bug.
		panic("menu: invalid built-in catalog: " + err.Error())
	}
	return c
}
