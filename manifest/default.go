package manifest

const photoBaseURL = "https://unsplash.com/photos/"

var defaultItems = []ContentItem{
	{ID: "002", Source: photoBaseURL + "a-city-with-many-buildings-HdofToH0dQg", Attribution: "Julia Karnavusha"},
	{ID: "003", Source: photoBaseURL + "a-group-of-colorful-buildings-8f4RsRuR9Ww", Attribution: "Zhu Yunxiao"},
	{ID: "004", Source: photoBaseURL + "historic-italian-piazza-with-tall-brick-tower-and-buildings-pXUgFj6DFA0", Attribution: "Cyril @cyrilczl"},
	{ID: "005", Source: photoBaseURL + "people-towards-white-building-uVsYF9OIAjo", Attribution: "Małgorzata Twardo"},
	{ID: "006", Source: photoBaseURL + "group-of-people-having-a-meeting-VBLHICVh-lI", Attribution: "Mario Gogh"},
	{ID: "007", Source: photoBaseURL + "raised-garden-beds-surround-a-gazebo-in-a-park-3Z2Z7yMlOpQ", Attribution: "Leonie Clough"},
	{ID: "008", Source: photoBaseURL + "people-walk-down-a-sunny-street-with-vintage-car-iTzCvGlOoEk", Attribution: "Noémi Szász"},
	{ID: "009", Source: photoBaseURL + "an-outdoor-market-with-lots-of-fruits-and-vegetables-S7g1fKnojwc", Attribution: "Annie Spratt"},
	{ID: "010", Source: photoBaseURL + "a-park-with-a-bench-and-a-tree-7qX-s6JmUtU", Attribution: "Valentin Lacoste"},
	{ID: "011", Source: photoBaseURL + "green-plant-on-brown-soil-lFYObzPtisg", Attribution: "Eduardo Casajús Gorostiaga"},
}

// Default returns the built-in manifest of story covers.
func Default() *Manifest {
	m, err := New(defaultItems)
	if err != nil {
		panic(err)
	}
	return m
}
