package reviewguard

import "math/rand"

var sampleGenuine = []string{
	"Great product! Exactly as described. Fast shipping.",
	"Very happy with this purchase. Good quality and value for money.",
	"Perfect! Works as expected. Highly recommend.",
	"Excellent customer service and product quality.",
	"Best purchase I've made in a while. Really satisfied.",
	"Good quality, fair price. Will buy again.",
	"Arrived quickly and in perfect condition.",
	"This product exceeded my expectations.",
	"Great value for the price. Works perfectly.",
	"Exactly what I was looking for. Very pleased.",
	"Outstanding quality and service.",
	"Highly satisfied with my purchase.",
	"This is a solid, reliable product.",
	"Great purchase, no regrets.",
	"Product is as described and works great.",
}

var sampleFake = []string{
	"BEST PRODUCT EVER!!! BUY NOW!!! CLICK HERE!!!",
	"Amazing!!! This changed my life completely!!!",
	"I bought 5 of these!!! Everyone should have one!!!",
	"Best deal ever! Limited time offer! Free shipping!",
	"Perfect product! 10000% recommend!!!",
	"This is the BEST product I have EVER seen!",
	"You MUST buy this NOW! Don't wait!",
	"Revolutionary product! Buy now and save!",
	"THIS IS AMAZING!!! GET IT NOW!!!",
	"Best thing ever! Highly recommend to everyone!!!",
	"5 stars! Best purchase! Must buy!",
	"Incredible! Everyone should have this!",
	"Amazing product! Best deal ever!",
	"Love it! Recommend to all friends!",
	"Perfect! Best product! 5 stars!",
}

// Five-star reviews whose text contradicts the rating.
var sampleMismatched = []string{
	"This product is absolutely useless and broke immediately.",
	"Complete waste of money, terrible quality.",
	"Worst purchase ever, do not recommend.",
	"Broken on arrival, customer service ignored me.",
	"This is the worst product I've ever bought.",
}

// SampleTrainingData returns a small labeled demonstration corpus: genuine
// reviews with ratings drawn from [3,5], spammy fake reviews from [4.5,5],
// and five-star reviews with mismatched sentiment. The seed fixes the rating
// draws so the corpus is reproducible.
func SampleTrainingData(seed int64) []LabeledReview {
	rng := rand.New(rand.NewSource(seed))
	data := make([]LabeledReview, 0, len(sampleGenuine)+len(sampleFake)+len(sampleMismatched))
	for _, text := range sampleGenuine {
		data = append(data, LabeledReview{Text: text, Rating: 3 + 2*rng.Float64(), Label: LabelGenuine})
	}
	for _, text := range sampleFake {
		data = append(data, LabeledReview{Text: text, Rating: 4.5 + 0.5*rng.Float64(), Label: LabelFake})
	}
	for _, text := range sampleMismatched {
		data = append(data, LabeledReview{Text: text, Rating: 5, Label: LabelFake})
	}
	return data
}
