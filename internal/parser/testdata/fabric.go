package fabric

// PECluster groups processing elements behind one scheduler.
type PECluster struct {
	Lanes      int    `json:"lanes"`
	InputPort  chan int
	OutputPort chan int
}

// RouterConfig holds the interconnect settings.
type RouterConfig struct {
	Radix int
}

// ScheduleTick advances every lane by one cycle.
func (c *PECluster) ScheduleTick(cycle int) {
	for i := 0; i < c.Lanes; i++ {
		select {
		case v := <-c.InputPort:
			c.OutputPort <- v + cycle
		default:
		}
	}
}
