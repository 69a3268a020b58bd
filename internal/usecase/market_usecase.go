package usecase

import (
	"context"
	"math"
	"strings"
	"time"
)

// ProduceRate is one row of the market price feed: the simulated mandi price
// plus retail comparison columns. The feed is decorative and never feeds
// stock or money arithmetic.
type ProduceRate struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Base     float64 `json:"base"`
	Unit     string  `json:"unit"`
	Mandi    float64 `json:"mandi"`
	Blinkit  float64 `json:"blinkit"`
	Zepto    float64 `json:"zepto"`
	Dmart    float64 `json:"dmart"`
}

type produceEntry struct {
	name     string
	category string
	base     float64
	unit     string
}

var produceMaster = []produceEntry{
	{"Tomato", "vegetables", 32, "kg"},
	{"Potato", "vegetables", 22, "kg"},
	{"Onion", "vegetables", 28, "kg"},
	{"Cauliflower", "vegetables", 45, "kg"},
	{"Cabbage", "vegetables", 25, "kg"},
	{"Spinach (Palak)", "vegetables", 20, "kg"},
	{"Brinjal (Long)", "vegetables", 35, "kg"},
	{"Lady Finger (Okra)", "vegetables", 55, "kg"},
	{"Bottle Gourd (Lauki)", "vegetables", 30, "kg"},
	{"Bitter Gourd (Karela)", "vegetables", 60, "kg"},
	{"Green Chilli", "vegetables", 70, "kg"},
	{"Ginger", "vegetables", 120, "kg"},
	{"Garlic", "vegetables", 180, "kg"},
	{"Capsicum (Green)", "vegetables", 65, "kg"},
	{"Carrot (Orange)", "vegetables", 40, "kg"},
	{"Radish (Mooli)", "vegetables", 25, "kg"},
	{"Cucumber", "vegetables", 35, "kg"},
	{"French Beans", "vegetables", 90, "kg"},
	{"Green Peas (Matar)", "vegetables", 80, "kg"},
	{"Beetroot", "vegetables", 45, "kg"},
	{"Drumstick", "vegetables", 110, "kg"},
	{"Pumpkin", "vegetables", 20, "kg"},
	{"Mushroom (Button)", "vegetables", 200, "kg"},
	{"Coriander Leaves", "vegetables", 15, "kg"},
	{"Broccoli", "vegetables", 140, "kg"},
	{"Mango (Alphonso)", "fruits", 450, "kg"},
	{"Mango (Kesar)", "fruits", 250, "kg"},
	{"Apple (Kashmiri)", "fruits", 140, "kg"},
	{"Banana (Robusta)", "fruits", 40, "kg"},
	{"Grapes (Green Seedless)", "fruits", 90, "kg"},
	{"Orange (Nagpur)", "fruits", 70, "kg"},
	{"Sweet Lime (Mosambi)", "fruits", 65, "kg"},
	{"Pomegranate (Anar)", "fruits", 180, "kg"},
	{"Watermelon", "fruits", 20, "kg"},
	{"Papaya", "fruits", 40, "kg"},
	{"Guava (Amrud)", "fruits", 60, "kg"},
	{"Pineapple", "fruits", 80, "kg"},
	{"Kiwi", "fruits", 350, "kg"},
	{"Dragon Fruit", "fruits", 220, "kg"},
	{"Strawberry", "fruits", 400, "kg"},
	{"Litchi", "fruits", 200, "kg"},
	{"Coconut (Tender)", "fruits", 50, "unit"},
	{"Wheat (Sharbati)", "grains", 3200, "Quintal"},
	{"Rice (Basmati)", "grains", 8500, "Quintal"},
	{"Rice (Kolam)", "grains", 5500, "Quintal"},
	{"Bajra (Pearl Millet)", "grains", 2400, "Quintal"},
	{"Jowar (Sorghum)", "grains", 3500, "Quintal"},
	{"Maize (Corn)", "grains", 2100, "Quintal"},
	{"Toor Dal (Arhar)", "grains", 11000, "Quintal"},
	{"Moong Dal", "grains", 9500, "Quintal"},
	{"Chana Dal", "grains", 6500, "Quintal"},
	{"Urad Dal", "grains", 10500, "Quintal"},
	{"Masoor Dal", "grains", 7500, "Quintal"},
	{"Rajma (Red)", "grains", 13000, "Quintal"},
	{"Soyabean", "grains", 4800, "Quintal"},
	{"Groundnut (Moongfali)", "grains", 7000, "Quintal"},
	{"Mustard Seeds (Sarson)", "grains", 5500, "Quintal"},
	{"Turmeric (Haldi)", "spices", 120, "kg"},
	{"Cumin (Jeera)", "spices", 350, "kg"},
	{"Coriander Powder (Dhania)", "spices", 180, "kg"},
	{"Red Chilli Powder", "spices", 220, "kg"},
	{"Black Pepper (Kali Mirch)", "spices", 600, "kg"},
	{"Cardamom (Elaichi)", "spices", 1800, "kg"},
	{"Cinnamon (Dalchini)", "spices", 450, "kg"},
	{"Cloves (Laung)", "spices", 900, "kg"},
	{"Fenugreek (Methi Seeds)", "spices", 110, "kg"},
}

type MarketUseCase interface {
	Rates(ctx context.Context, search string) []ProduceRate
}

type marketUseCase struct {
	now func() time.Time
}

func NewMarketUseCase() MarketUseCase {
	return &marketUseCase{now: time.Now}
}

// NewMarketUseCaseAt pins the clock, for tests.
func NewMarketUseCaseAt(now func() time.Time) MarketUseCase {
	return &marketUseCase{now: now}
}

// dynamicPrice applies a deterministic hourly fluctuation of up to +-8% so
// repeated calls within the same hour agree.
func dynamicPrice(base float64, hour int) float64 {
	fluctuation := math.Sin(float64(hour)) * 0.08
	return round2(base * (1 + fluctuation))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (uc *marketUseCase) Rates(ctx context.Context, search string) []ProduceRate {
	hour := uc.now().Hour()
	search = strings.ToLower(strings.TrimSpace(search))

	rates := make([]ProduceRate, 0, len(produceMaster))
	for _, entry := range produceMaster {
		if search != "" && !strings.Contains(strings.ToLower(entry.name), search) {
			continue
		}

		mandi := dynamicPrice(entry.base, hour)
		rates = append(rates, ProduceRate{
			Name:     entry.name,
			Category: entry.category,
			Base:     entry.base,
			Unit:     entry.unit,
			Mandi:    mandi,
			Blinkit:  round2(mandi * 1.45),
			Zepto:    round2(mandi * 1.50),
			Dmart:    round2(mandi * 1.25),
		})
	}
	return rates
}
