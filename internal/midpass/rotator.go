package midpass

// DefaultEndpoints - базовые адреса статусного API midpass.
var DefaultEndpoints = []string{
	"https://info.midpass.ru/api/request",
}

// Rotator выбирает эндпоинты строго по кругу. Счётчик двигается ровно один
// раз на попытку запроса, независимо от её исхода, поэтому распределение
// остаётся равномерным и при частичных отказах. Не потокобезопасен: в рамках
// одного прогона автообновления заказы обходятся последовательно.
type Rotator struct {
	endpoints []string
	next      int
}

// NewRotator создаёт ротатор по списку эндпоинтов.
// С пустым списком используется DefaultEndpoints.
func NewRotator(endpoints []string) *Rotator {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	return &Rotator{endpoints: endpoints}
}

// Next возвращает очередной эндпоинт и сдвигает счётчик.
func (r *Rotator) Next() string {
	endpoint := r.endpoints[r.next%len(r.endpoints)]
	r.next++
	return endpoint
}

// Endpoints возвращает настроенный список эндпоинтов.
func (r *Rotator) Endpoints() []string {
	return r.endpoints
}
