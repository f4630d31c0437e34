// Command latticed hosts the lattice function service. The lattice CLI
// spawns it on demand as "latticed -m <module> <port>" and connects over the
// loopback; it can also be started by hand for a long-lived shared service.
package main
